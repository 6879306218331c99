package controller

import (
	"net/http"

	"esp8266-web/internal/httpapi"
	"esp8266-web/internal/modules/readings/repository"
	"esp8266-web/internal/modules/readings/service"
)

type ReadingsController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type readingsControllerImpl struct {
	repository repository.ReadingsRepository
	service    *service.Service
	secretKey  string
	corsOrigin string
}

func NewReadingsController(repository repository.ReadingsRepository, svc *service.Service, secretKey, corsOrigin string) ReadingsController {
	return &readingsControllerImpl{
		repository: repository,
		service:    svc,
		secretKey:  secretKey,
		corsOrigin: corsOrigin,
	}
}

func (c *readingsControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	cors := func(h http.HandlerFunc) http.Handler {
		return httpapi.CORS(c.corsOrigin, h)
	}
	mux.Handle("GET /data", cors(c.handleList))
	mux.Handle("POST /data", cors(c.handleCreate))
	mux.Handle("OPTIONS /data", cors(c.handlePreflight))
	mux.Handle("GET /data/latest", cors(c.handleLatest))
	mux.Handle("OPTIONS /data/latest", cors(c.handlePreflight))
}
