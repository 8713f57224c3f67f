package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"coaching-site/internal/form"
	"coaching-site/internal/logger"
	"coaching-site/internal/ratelimit"
)

// ContactHandler accepts contact form submissions over JSON. Inquiries are
// validated, rate limited per client, and recorded in the structured log;
// there is no outbound email delivery.
type ContactHandler struct {
	limiter *ratelimit.Limiter
	log     logger.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(limiter *ratelimit.Limiter, log logger.Logger) *ContactHandler {
	return &ContactHandler{limiter: limiter, log: log}
}

// handleSubmit processes a contact form submission.
func (h *ContactHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req form.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request body",
		})
		return
	}

	req.Sanitize()
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"errors": fieldErrors,
		})
		return
	}

	result := h.limiter.Check(r)
	if !result.Allowed {
		retryAfter := int(time.Until(result.Reset).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": fmt.Sprintf("Too many requests. Please try again in %d seconds.", retryAfter),
		})
		return
	}

	// The inquiry itself is the deliverable: operations follows up from the
	// log stream.
	h.log.With(map[string]interface{}{
		"name":     req.Name,
		"email":    req.Email,
		"phone":    req.Phone,
		"org":      req.Organization,
		"service":  req.Service,
		"workshop": req.Workshop,
		"message":  req.Message,
	}).Info("Contact inquiry received")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Your inquiry has been received. We will get back to you shortly.",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
