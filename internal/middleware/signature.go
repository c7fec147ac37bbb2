package middleware

import (
	"net/http"

	"messaging-service/internal/carrier"
	"messaging-service/pkg/logger"
	"messaging-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignatureHeader is the carrier's webhook signature header
const SignatureHeader = "X-Twilio-Signature"

// CarrierSignatureMiddleware verifies the carrier's webhook signature
// before any other processing. It is tenant-context-free and touches no
// storage; an invalid signature is rejected with 401 and nothing else runs.
func CarrierSignatureMiddleware(validator *carrier.SignatureValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			req := c.Request()

			if err := req.ParseForm(); err != nil {
				log.Warn("Failed to parse webhook form body", zap.Error(err))
				prometheus.RecordSignatureFailure()
				return c.String(http.StatusUnauthorized, "Unauthorized")
			}

			params := make(map[string]string, len(req.PostForm))
			for key := range req.PostForm {
				params[key] = req.PostForm.Get(key)
			}

			signature := req.Header.Get(SignatureHeader)
			if !validator.Validate(requestURL(req), params, signature) {
				log.Warn("Rejected webhook with invalid signature",
					zap.String("path", req.URL.Path),
					zap.String("ip", c.RealIP()))
				prometheus.RecordSignatureFailure()
				return c.String(http.StatusUnauthorized, "Unauthorized")
			}

			return next(c)
		}
	}
}

// requestURL reconstructs the full URL the carrier signed, including any
// query string.
func requestURL(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if forwarded := req.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + req.Host + req.URL.RequestURI()
}
