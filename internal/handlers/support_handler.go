package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

// SupportHandler relays help requests to the support inbox. The endpoint is
// public, so a reCAPTCHA check gates it when a secret is configured.
type SupportHandler struct {
	recaptcha *services.RecaptchaVerifier
	mailer    *services.SendGridMailer
}

func NewSupportHandler(recaptcha *services.RecaptchaVerifier, mailer *services.SendGridMailer) *SupportHandler {
	return &SupportHandler{recaptcha: recaptcha, mailer: mailer}
}

type helpRequestBody struct {
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken"`
}

func (h *SupportHandler) SubmitHelpRequest(w http.ResponseWriter, r *http.Request) {
	var req helpRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	email := strings.TrimSpace(req.Email)
	subject := strings.TrimSpace(req.Subject)
	msg := strings.TrimSpace(req.Message)

	errors := map[string]string{}
	if email == "" {
		errors["email"] = "Email is required"
	} else if len(email) > 254 {
		errors["email"] = "Email is too long"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errors["email"] = "Email is invalid"
	}

	if subject == "" {
		errors["subject"] = "Subject is required"
	} else if len(subject) > 200 {
		errors["subject"] = "Subject is too long"
	}

	if msg == "" {
		errors["message"] = "Message is required"
	} else if len(msg) > 4000 {
		errors["message"] = "Message is too long"
	}

	if len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	remoteIP := clientIP(r)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if h.recaptcha.Enabled() {
		ok, reason, err := h.recaptcha.VerifyV2(ctx, req.RecaptchaToken, remoteIP)
		if err != nil {
			log.Printf("[Support] recaptcha error ip=%s err=%v", remoteIP, err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to verify reCAPTCHA"))
			return
		}
		if !ok {
			log.Printf("[Support] recaptcha failed ip=%s reason=%s", remoteIP, reason)
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("reCAPTCHA verification failed"))
			return
		}
	}

	ticket := generateHelpTicket()
	if err := h.mailer.SendHelpEmail(ctx, ticket, email, subject, msg); err != nil {
		log.Printf("[Support] ticket=%s sendgrid error=%v", ticket, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to send help request"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{
		"ticket": ticket,
	}))
}

func generateHelpTicket() string {
	// Example: TC-20260131-032508-A1B2C3D4
	now := time.Now().UTC().Format("20060102-150405")
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	return "TC-" + now + "-" + id
}

func clientIP(r *http.Request) string {
	// Behind a proxy X-Forwarded-For carries the caller. Use the first IP.
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
