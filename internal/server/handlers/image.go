// internal/server/handlers/image.go

package handlers

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

const imageReferer = "https://www.reddit.com/"

// ImageProxyHandler relays remote images so browsers avoid hotlink blocking
type ImageProxyHandler struct {
	client *http.Client
	logger *log.Logger
}

// NewImageProxyHandler creates a new image proxy
func NewImageProxyHandler(timeout time.Duration, logger *log.Logger) *ImageProxyHandler {
	return &ImageProxyHandler{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// ProxyImage streams the image at ?url=
func (h *ImageProxyHandler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "URL parameter required")
		return
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid image URL")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid image URL")
		return
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Referer", imageReferer)
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; LocalLens/1.0)")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("image fetch failed", "url", raw, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to proxy image")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respondWithError(w, resp.StatusCode, "Failed to fetch image")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug("image copy interrupted", "url", raw, "err", err)
	}
}
