package service

import (
	"net/http"

	"github.com/Suhaibinator/SConvert/pkg/codec"
	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"github.com/Suhaibinator/SConvert/pkg/radix"
	"github.com/Suhaibinator/SConvert/pkg/router"
	"github.com/Suhaibinator/SConvert/pkg/sanitize"
)

// ConvertRequest is the body of POST /v1/convert.
type ConvertRequest struct {
	Number    string `json:"number"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Precision *int   `json:"precision,omitempty"`
}

// ConvertResponse is returned by both convert endpoints.
type ConvertResponse struct {
	Number    string `json:"number"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Precision int    `json:"precision"`
	Result    string `json:"result"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Register mounts the service routes on r.
func (s *Service) Register(r *router.Router) {
	auth := s.authMiddleware()

	router.RegisterGenericRoute(r, router.RouteConfig[ConvertRequest, ConvertResponse]{
		Path:        "/v1/convert",
		Methods:     []string{http.MethodPost},
		Codec:       codec.NewJSONCodec[ConvertRequest, ConvertResponse](),
		Handler:     s.handleConvert,
		Middlewares: []router.Middleware{auth},
	})

	r.RegisterRoute(router.RouteConfigBase{
		Path:        "/v1/convert/:from/:to/:number",
		Methods:     []string{http.MethodGet},
		Handler:     s.handleConvertPath,
		Middlewares: []router.Middleware{auth},
	})

	r.RegisterRoute(router.RouteConfigBase{
		Path:        "/v1/live",
		Methods:     []string{http.MethodGet},
		Handler:     s.handleLive,
		Middlewares: []router.Middleware{auth},
	})

	r.RegisterRoute(router.RouteConfigBase{
		Path:    "/healthz",
		Methods: []string{http.MethodGet},
		Handler: s.handleHealth,
	})

	if s.registry != nil {
		r.RegisterRoute(router.RouteConfigBase{
			Path:    "/metrics",
			Methods: []string{http.MethodGet},
			Handler: s.registry.Handler().ServeHTTP,
		})
	}
}

func (s *Service) handleConvert(r *http.Request, data ConvertRequest) (ConvertResponse, error) {
	req := radix.Request{
		Digits:    data.Number,
		From:      data.From,
		To:        data.To,
		Precision: s.opts.DefaultPrecision,
	}
	if data.Precision != nil {
		req.Precision = *data.Precision
	}

	result, err := s.Convert(r.Context(), req)
	if err != nil {
		status, field := validationError(err)
		return ConvertResponse{}, &router.HTTPError{
			StatusCode: status,
			Message:    err.Error(),
			Field:      field,
			Err:        err,
		}
	}
	return response(req, result), nil
}

func (s *Service) handleConvertPath(w http.ResponseWriter, r *http.Request) {
	form := sanitize.Form{
		Number:    router.GetParam(r, "number"),
		From:      router.GetParam(r, "from"),
		To:        router.GetParam(r, "to"),
		Precision: r.URL.Query().Get("precision"),
	}

	req, err := form.Request(s.opts)
	var result string
	if err == nil {
		result, err = s.Convert(r.Context(), req)
	} else {
		s.observe(r.Context(), req, "", err, 0)
	}
	if err != nil {
		status, field := validationError(err)
		codec.WriteError(w, status, codec.ErrorResponse{
			Error:   err.Error(),
			Field:   field,
			TraceID: middleware.GetTraceID(r),
		})
		return
	}

	_ = codec.WriteJSON(w, http.StatusOK, response(req, result))
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = codec.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func response(req radix.Request, result string) ConvertResponse {
	return ConvertResponse{
		Number:    req.Digits,
		From:      req.From,
		To:        req.To,
		Precision: req.Precision,
		Result:    result,
	}
}
