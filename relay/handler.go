package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/manavc-13/KIIT-Mailer/attachment"
	"github.com/manavc-13/KIIT-Mailer/httpserver/middleware"
	"github.com/manavc-13/KIIT-Mailer/logger"
	"github.com/manavc-13/KIIT-Mailer/mail"
	"github.com/manavc-13/KIIT-Mailer/store"
)

// Form fields of the send-mail endpoint.
const (
	FieldTo          = "to"
	FieldSubject     = "subject"
	FieldHTML        = "html"
	FieldSMTPUser    = "smtpUser"
	FieldSMTPPass    = "smtpPass"
	FieldDisplayName = "displayName"
	FieldReplyTo     = "replyTo"
	FieldFile        = "file"
)

type sendResponse struct {
	Success   bool   `json:"success,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

type draftResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Routes returns the relay HTTP API.
func (r *Relay) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recovery, middleware.Monitoring)

	mux.HandleFunc("/api/send-mail", r.handleSendMail)
	mux.Route("/api/drafts", func(rt chi.Router) {
		rt.Get("/", r.handleListDrafts)
		rt.Post("/", r.handleSaveDraft)
		rt.Delete("/{id}", r.handleDeleteDraft)
	})
	mux.Get("/api/logs/activity", r.handleActivity)
	mux.Get("/api/logs/sent-mails", r.handleSentMails)

	if r.cfg.StaticDir != "" {
		mux.Handle("/*", http.FileServer(http.Dir(r.cfg.StaticDir)))
	}
	return mux
}

func (r *Relay) handleSendMail(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, sendResponse{Error: "Method Not Allowed"})
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.cfg.MaxBodyMB<<20)
	sr, err := readSendForm(req)
	if err != nil {
		logger.FromContextWithErr(req.Context(), err).ErrorContext(req.Context(), "upload failed")
		writeJSON(w, http.StatusInternalServerError, sendResponse{Error: "Upload failed"})
		return
	}

	id, err := r.Deliver(req.Context(), sr)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, sendResponse{Error: ErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{Success: true, MessageID: id})
}

// readSendForm streams the multipart body. Files are kept in arrival order
// whatever their field name.
func readSendForm(req *http.Request) (SendRequest, error) {
	mr, err := req.MultipartReader()
	if err != nil {
		return SendRequest{}, errors.Wrap(err, "not a multipart request")
	}

	fields := map[string]string{}
	var files []mail.Attachment
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return SendRequest{}, errors.Wrap(err, "failed to read multipart body")
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return SendRequest{}, errors.Wrapf(err, "failed to read part %q", part.FormName())
		}

		if part.FileName() == "" {
			fields[part.FormName()] = string(data)
			continue
		}
		contentType := part.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = attachment.DetectContentType(part.FileName(), data)
		}
		files = append(files, mail.Attachment{Filename: part.FileName(), ContentType: contentType, Content: data})
	}

	return SendRequest{
		To:          fields[FieldTo],
		Subject:     fields[FieldSubject],
		HTML:        fields[FieldHTML],
		SMTPUser:    strings.TrimSpace(fields[FieldSMTPUser]),
		SMTPPass:    fields[FieldSMTPPass],
		DisplayName: fields[FieldDisplayName],
		ReplyTo:     fields[FieldReplyTo],
		Attachments: files,
	}, nil
}

func (r *Relay) handleListDrafts(w http.ResponseWriter, req *http.Request) {
	drafts, err := r.store.ListDrafts(req.Context())
	if err != nil {
		r.fail(w, req, err, "Failed to fetch drafts")
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (r *Relay) handleSaveDraft(w http.ResponseWriter, req *http.Request) {
	var d store.Draft
	if err := json.NewDecoder(req.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, sendResponse{Error: "Invalid draft"})
		return
	}

	saved, created, err := store.SaveDraft(req.Context(), r.store, d)
	if err != nil {
		r.fail(w, req, err, "Failed to save draft")
		return
	}
	msg := "Draft updated"
	if created {
		msg = "Draft created"
	}
	writeJSON(w, http.StatusOK, draftResponse{Success: true, ID: saved.ID, Message: msg})
}

func (r *Relay) handleDeleteDraft(w http.ResponseWriter, req *http.Request) {
	if err := r.store.DeleteDraft(req.Context(), chi.URLParam(req, "id")); err != nil {
		r.fail(w, req, err, "Failed to delete draft")
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Success: true})
}

func (r *Relay) handleActivity(w http.ResponseWriter, req *http.Request) {
	logs, err := r.store.ListActivity(req.Context(), store.ActivityLimit)
	if err != nil {
		r.fail(w, req, err, "Failed to fetch logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (r *Relay) handleSentMails(w http.ResponseWriter, req *http.Request) {
	mails, err := r.store.ListSentMails(req.Context(), store.SentMailLimit)
	if err != nil {
		r.fail(w, req, err, "Failed to fetch sent mails")
		return
	}
	writeJSON(w, http.StatusOK, mails)
}

func (r *Relay) fail(w http.ResponseWriter, req *http.Request, err error, msg string) {
	logger.FromContextWithErr(req.Context(), err).ErrorContext(req.Context(), msg)
	writeJSON(w, http.StatusInternalServerError, sendResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
