package controller

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	slogctx "github.com/veqryn/slog-context"

	"esp8266-web/internal/metrics"
	"esp8266-web/internal/modules/readings/service"
	"esp8266-web/internal/utils"
	"esp8266-web/pkg/types"
)

const secretHeader = "X-Secret-Key"

func (c *readingsControllerImpl) handleList(w http.ResponseWriter, r *http.Request) {
	logger := slogctx.FromCtx(r.Context())
	f := parseListQuery(r)

	readings, total, err := c.repository.ListPage(r.Context(), f)
	if err != nil {
		logger.Error("list readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	utils.WriteJSON(w, http.StatusOK, readings)
}

func (c *readingsControllerImpl) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := c.repository.LatestReading(r.Context())
	if err != nil {
		slogctx.FromCtx(r.Context()).Error("latest reading failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load reading")
		return
	}
	if latest == nil {
		utils.WriteError(w, http.StatusNotFound, "no readings yet")
		return
	}
	utils.WriteJSON(w, http.StatusOK, latest)
}

func (c *readingsControllerImpl) handleCreate(w http.ResponseWriter, r *http.Request) {
	logger := slogctx.FromCtx(r.Context())

	if !c.authorized(r) {
		metrics.ReadingsRejected.WithLabelValues(metrics.SourceHTTP, "forbidden").Inc()
		logger.Warn("reading rejected: bad secret key", "remote", r.RemoteAddr)
		utils.WriteError(w, http.StatusForbidden, "invalid secret key")
		return
	}

	var p types.ReadingPayload
	if err := utils.DecodeJSON(w, r, &p); err != nil {
		metrics.ReadingsRejected.WithLabelValues(metrics.SourceHTTP, "decode").Inc()
		utils.WriteError(w, http.StatusUnprocessableEntity, "malformed reading: "+err.Error())
		return
	}

	rec, err := c.service.Ingest(r.Context(), metrics.SourceHTTP, p)
	if errors.Is(err, service.ErrInvalidPayload) {
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		logger.Error("store reading failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to store reading")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rec)
}

func (c *readingsControllerImpl) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (c *readingsControllerImpl) authorized(r *http.Request) bool {
	got := r.Header.Get(secretHeader)
	if got == "" || c.secretKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.secretKey)) == 1
}
