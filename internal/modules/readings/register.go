package readings

import (
	"database/sql"
	"net/http"

	"esp8266-web/internal/modules/readings/controller"
	"esp8266-web/internal/modules/readings/repository"
	"esp8266-web/internal/modules/readings/service"
	"esp8266-web/internal/mqtt"
)

// Settings the readings feature needs from the server config.
type Settings struct {
	Driver     string
	SecretKey  string
	CORSOrigin string
}

// RegisterFeature mounts the /data routes on mux and, when subscriber is
// non-nil, stores readings arriving over MQTT.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, s Settings, subscriber mqtt.MQTTSubscriber) {
	readingsRepository := repository.NewRepository(db, s.Driver)
	readingsService := service.NewService(readingsRepository)

	readingsController := controller.NewReadingsController(readingsRepository, readingsService, s.SecretKey, s.CORSOrigin)
	readingsController.RegisterRoutes(mux)

	if subscriber != nil {
		readingsService.Register(subscriber)
	}
}
