package compose

import "strings"

// DoctypeMarker identifies a fragment that is already a complete document.
const DoctypeMarker = "<!DOCTYPE html>"

// DefaultFontLink is the font stylesheet injected into wrapped rich-text mail.
const DefaultFontLink = `<link href="https://fonts.googleapis.com/css2?family=EB+Garamond:wght@400;500;600;700;800&display=swap" rel="stylesheet">`

// DefaultStyleBlock carries the mobile layout rules used by the stock template.
const DefaultStyleBlock = `<style>
    /* Mobile Optimization */
    @media only screen and (max-width: 600px) {
        .main-table { width: 100% !important; max-width: 100% !important; }
        .mobile-padding { padding-left: 20px !important; padding-right: 20px !important; }
        .stack-column { display: block !important; width: 100% !important; padding-right: 0 !important; padding-bottom: 20px !important; }
        .stack-column-last { display: block !important; width: 100% !important; border-left: none !important; border-top: 1px solid #eeeeee !important; padding-top: 20px !important; padding-left: 0 !important; }
        .mobile-button { width: 100% !important; display: block !important; box-sizing: border-box !important; }
    }
</style>`

// Wrap places a rich-text fragment into a minimal HTML document with the
// given font and style markup. Fragments that already contain DoctypeMarker
// are returned unchanged.
func Wrap(fragment, fontAssets, styleAssets string) string {
	if strings.Contains(fragment, DoctypeMarker) {
		return fragment
	}

	var b strings.Builder
	b.Grow(len(fragment) + len(fontAssets) + len(styleAssets) + 256)
	b.WriteString(DoctypeMarker + "\n")
	b.WriteString(`<html lang="en">` + "\n")
	b.WriteString("<head>\n")
	b.WriteString(`<meta charset="UTF-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString(fontAssets + "\n")
	b.WriteString(styleAssets + "\n")
	b.WriteString("</head>\n")
	b.WriteString(`<body style="margin:0; padding:0; background-color:#f4f4f4;">` + "\n")
	b.WriteString(fragment + "\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>")
	return b.String()
}
