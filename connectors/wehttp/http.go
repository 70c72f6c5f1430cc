package wehttp

import (
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/wee-store-go/we"
)

type HandlerOption[S any] func(service *httpService[S])

func Logger[S any](log *zerolog.Logger) HandlerOption[S] {
	return func(service *httpService[S]) {
		service.log = log
	}
}

// StreamBuffer sets how many snapshots a websocket client may fall behind
// before it is disconnected.
func StreamBuffer[S any](size int) HandlerOption[S] {
	return func(service *httpService[S]) {
		service.buffer = size
	}
}

func NewHandler[S any](store *we.Store[S], options ...HandlerOption[S]) http.Handler {
	service := &httpService[S]{store: store, encoder: SnapshotEncoder[S]{}, buffer: 16}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Method("GET", "/state", service.getState())
		r.Method("GET", "/state/{path}", service.getPath())
		r.Method("POST", "/actions", service.dispatchAction())
	})
	r.Method("GET", "/subscribe", service.subscribe())

	return otelhttp.NewHandler(r, "we-http")
}

type httpService[S any] struct {
	log     *zerolog.Logger
	store   *we.Store[S]
	encoder SnapshotEncoder[S]
	buffer  int
}

func (service *httpService[S]) getState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := service.encoder.Encode(w, r, service.store.Snapshot()); err != nil {
			service.log.Info().Err(err).Msg("failed to encode state")
		}
	}
}

type pathResponse struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func (service *httpService[S]) getPath() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := chi.URLParam(r, "path")

		value := we.PathOf(service.store.State(), path)
		if !value.Exists() {
			http.NotFound(w, r)
			return
		}

		render.JSON(w, r, pathResponse{Path: path, Value: json.RawMessage(value.Raw)})
	}
}

func (service *httpService[S]) dispatchAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-type")
		mediaType, _, err := mime.ParseMediaType(contentType)
		if mediaType != we.JSONEncoding || err != nil {
			http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		var action we.RemoteAction
		if err := json.UnmarshalContext(r.Context(), body, &action); err != nil || action.ActionType == "" {
			service.log.Info().Err(err).Msg("failed to unmarshal action")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		decoded, err := service.store.Decode(action)
		if err != nil {
			service.log.Info().Err(err).Str("action", action.ActionType.String()).Msg("failed to decode action")
			http.Error(w, "invalid action payload", http.StatusBadRequest)
			return
		}

		snapshot, err := service.store.DispatchAndWait(r.Context(), decoded)
		if err != nil {
			service.log.Info().Err(err).Str("action", action.ActionType.String()).Msg("dispatch abandoned")
			http.Error(w, "dispatch abandoned", http.StatusServiceUnavailable)
			return
		}

		if err := service.encoder.Encode(w, r, snapshot); err != nil {
			service.log.Info().Err(err).Msg("failed to encode state")
		}
	}
}
