package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rubenparnell/departureBoard/apimodel"
	"github.com/rubenparnell/departureBoard/internal/srv/config"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/rubenparnell/departureBoard/internal/srv/mode"
	"github.com/rubenparnell/departureBoard/internal/tool"
	"github.com/rubenparnell/departureBoard/internal/version"
	"github.com/sirupsen/logrus"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"
)

type SettingsService interface {
	Current() apimodel.Settings
	Update(update apimodel.SettingsUpdate) (apimodel.Settings, error)
}

type ModeReader interface {
	Current() mode.Mode
}

// Api is the local settings server used by the board setup page
type Api struct {
	param     config.ApiParam
	configDir string

	settings SettingsService
	modes    ModeReader
	poster   event.Poster

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server
}

func NewApi(param config.ApiParam, configDir string, settings SettingsService, modes ModeReader, poster event.Poster) *Api {
	api := &Api{
		param:     param,
		configDir: configDir,
		settings:  settings,
		modes:     modes,
		poster:    poster,
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						GlobalErrorAction(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
					}
				}()

				// Check API Key
				if param.ApiKey != "" && r.Header.Get("x-api-key") != param.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s %s", r.Method, r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	api.apiRouter.HandleFunc("/is_alive", func(w http.ResponseWriter, r *http.Request) {
		ErrorStatusAction(w, r, http.StatusOK)
	}).Methods("GET")
	api.apiRouter.HandleFunc("/settings", api.readSettingsAction).Methods("GET")
	api.apiRouter.HandleFunc("/settings", api.updateSettingsAction).Methods("PUT")
	api.apiRouter.HandleFunc("/mode", api.readModeAction).Methods("GET")
	api.apiRouter.HandleFunc("/mode/next", api.nextModeAction).Methods("POST")
	api.apiRouter.HandleFunc("/mode/{mode}", api.setModeAction).Methods("PUT")
	api.apiRouter.HandleFunc("/messages/refresh", api.refreshMessagesAction).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Content-Type", "x-api-key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(param.Port, 10),
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 120,
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
	}

	return api
}

// Handler is the api router without the CORS and compression layers
func (d *Api) Handler() http.Handler {
	return d.router
}

func (d *Api) Start() {
	logrus.Infof("Start api device on port %d", d.param.Port)

	if !d.param.Ssl {
		go func() {
			if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Error(err)
			}
		}()
		return
	}

	generated, err := tool.EnsureSelfSignedCertificate(
		d.selfSignedKeyFilename(),
		d.selfSignedCertFilename(),
		version.AppName,
		"Departure Board",
		[]string{})
	if err != nil {
		logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
	}
	if generated {
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to stop api server: %v", err)
	}
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.configDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.configDir, "cert.pem")
}

func (d *Api) readSettingsAction(w http.ResponseWriter, r *http.Request) {
	sendJson(w, http.StatusOK, d.settings.Current())
}

func (d *Api) updateSettingsAction(w http.ResponseWriter, r *http.Request) {
	var update apimodel.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logrus.Debugf("Invalid settings: %v", err)
		apimodel.WrongParametersErrorMessage.SendError(w)
		return
	}

	settings, err := d.settings.Update(update)
	if err != nil {
		GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendJson(w, http.StatusOK, settings)
}

func (d *Api) readModeAction(w http.ResponseWriter, r *http.Request) {
	sendJson(w, http.StatusOK, apimodel.ModeStatus{Mode: d.modes.Current().String()})
}

func (d *Api) setModeAction(w http.ResponseWriter, r *http.Request) {
	m, err := mode.Parse(mux.Vars(r)["mode"])
	if err != nil {
		apimodel.UnknownModeErrorMessage.SendError(w)
		return
	}
	d.poster.Post(event.ModeRequested(m.String()))
	sendJson(w, http.StatusAccepted, apimodel.ModeStatus{Mode: m.String()})
}

func (d *Api) nextModeAction(w http.ResponseWriter, r *http.Request) {
	d.poster.Post(event.ButtonPressed())
	ErrorStatusAction(w, r, http.StatusAccepted)
}

func (d *Api) refreshMessagesAction(w http.ResponseWriter, r *http.Request) {
	d.poster.Post(event.NewMessage())
	ErrorStatusAction(w, r, http.StatusAccepted)
}

func sendJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Unable to encode response: %v", err)
	}
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, message string, status int) {
	apimodel.ErrorMessage{ErrStatusCode: status, ErrMessage: message}.SendError(w)
}
