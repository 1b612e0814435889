package cli

import (
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/manavc-13/KIIT-Mailer/batch"
	"github.com/manavc-13/KIIT-Mailer/compose"
	"github.com/manavc-13/KIIT-Mailer/storage"
)

// Campaign is one batch described in YAML. Relative paths resolve against
// the campaign file's directory.
type Campaign struct {
	// Relay is the relay base URL. Empty sends in process through the
	// provider configured in the environment.
	Relay       string            `yaml:"relay"`
	Credentials batch.Credentials `yaml:"credentials"`
	Subject     string            `yaml:"subject"`
	Mode        string            `yaml:"mode"`
	Body        string            `yaml:"body"`
	BodyFile    string            `yaml:"body_file"`
	Recipients  string            `yaml:"recipients"`
	// Attachments are local paths or s3://bucket/key references.
	Attachments       []string       `yaml:"attachments"`
	SubstituteSubject bool           `yaml:"substitute_subject"`
	SendTimeout       time.Duration  `yaml:"send_timeout"`
	Assets            compose.Assets `yaml:"assets"`
}

// LoadCampaign reads path and merges overrides over it. Zero fields of
// overrides keep the file's values. An empty path starts from overrides.
func LoadCampaign(path string, overrides Campaign) (Campaign, error) {
	var c Campaign
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Campaign{}, errors.Wrap(err, "failed to read campaign")
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return Campaign{}, errors.Wrapf(err, "failed to parse campaign %s", path)
		}
		c.resolvePaths(filepath.Dir(path))
	}

	if err := mergo.Merge(&c, overrides, mergo.WithOverride); err != nil {
		return Campaign{}, errors.Wrap(err, "failed to merge campaign overrides")
	}
	return c, nil
}

func (c *Campaign) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.BodyFile = abs(c.BodyFile)
	c.Recipients = abs(c.Recipients)
	for i, a := range c.Attachments {
		if !storage.IsRef(a) {
			c.Attachments[i] = abs(a)
		}
	}
}

// Template returns the inline body or the content of BodyFile.
func (c Campaign) Template() (string, error) {
	if c.BodyFile == "" {
		return c.Body, nil
	}
	raw, err := os.ReadFile(c.BodyFile)
	if err != nil {
		return "", errors.Wrap(err, "failed to read body file")
	}
	return string(raw), nil
}

func (c Campaign) Options() batch.Options {
	return batch.Options{SubstituteSubject: c.SubstituteSubject, SendTimeout: c.SendTimeout}
}
