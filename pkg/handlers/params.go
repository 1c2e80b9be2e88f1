package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/jsonutil"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

var validate = validator.New()

// QueryRow returns the query parameters as a Row in the order they appear
// in the URL. A repeated parameter keeps its last value.
func QueryRow(r *http.Request) (*models.Row, error) {
	row := models.NewRow()
	for _, part := range strings.Split(r.URL.RawQuery, "&") {
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("invalid query parameter %q: %w", key, err)
		}
		v, err := url.QueryUnescape(val)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", k, err)
		}
		row.Set(k, v)
	}
	return row, nil
}

// readBody reads the request body. Past maxBodyBytes it fails with
// apperrors.ErrPayloadTooLarge instead of returning a truncated body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, bodyReadError(err)
	}
	return data, nil
}

func bodyReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: Request body exceeds %d bytes", apperrors.ErrPayloadTooLarge, tooLarge.Limit)
	}
	return err
}

// decodeJSON decodes a size-limited body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return bodyReadError(err)
	}
	return nil
}

// rejectBody answers an unreadable body: 413 when it was too large,
// otherwise 400 with message.
func rejectBody(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	if errors.Is(err, apperrors.ErrPayloadTooLarge) {
		WriteServiceError(w, logger, err)
		return
	}
	badRequest(w, logger, message)
}

// DecodeRowBody decodes a JSON object body. Null fields are dropped.
func DecodeRowBody(w http.ResponseWriter, r *http.Request) (*models.Row, error) {
	data, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	row, err := jsonutil.DecodeRow(data)
	if err != nil {
		return nil, err
	}
	return dropNulls(row), nil
}

// DecodeRowsBody decodes a JSON array body (or a single object).
// Null fields are dropped unless keepNulls is set.
func DecodeRowsBody(w http.ResponseWriter, r *http.Request, keepNulls bool) ([]*models.Row, error) {
	data, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	rows, err := jsonutil.DecodeRows(data)
	if err != nil {
		return nil, err
	}
	if !keepNulls {
		for i, row := range rows {
			rows[i] = dropNulls(row)
		}
	}
	return rows, nil
}

func dropNulls(row *models.Row) *models.Row {
	out := models.NewRow()
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value != nil {
			out.Set(pair.Key, pair.Value)
		}
	}
	return out
}

// ClientIP returns the caller address, preferring the first
// X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// badRequest writes a 400 with the invalid_request code.
func badRequest(w http.ResponseWriter, logger *zap.Logger, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// respond writes data as a 200 JSON body.
func respond(w http.ResponseWriter, logger *zap.Logger, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
