package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/apperr"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxBodyBytes     = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Base().Error("encode JSON response", "err", err)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation, apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError answers with {"error", "code"}. Internal errors are logged with
// their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		logging.FromCtx(r.Context()).Error("request failed", "err", err)
	}
	writeJSON(w, statusFor(e.Kind), map[string]string{"error": e.Message, "code": string(e.Kind)})
}

// notFound turns pgx.ErrNoRows into a NOT_FOUND error with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s", msg)
	}
	return err
}

// isUniqueViolation reports a 23505 on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body is required")
		}
		return apperr.BadRequest("invalid request body")
	}
	return nil
}

// pagination parses ?limit= and ?offset=, capping limit at maxPageLimit.
func pagination(r *http.Request) (limit, offset int32, err error) {
	limit = defaultPageLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 1 || n > maxPageLimit {
			return 0, 0, apperr.Validation("limit must be between 1 and %d", maxPageLimit)
		}
		limit = int32(n)
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil || n < 0 {
			return 0, 0, apperr.Validation("offset must be a non-negative integer")
		}
		offset = int32(n)
	}
	return limit, offset, nil
}

// parseOrderStatus reads ?status=, empty meaning any.
func parseOrderStatus(s string) (database.NullOrderStatus, error) {
	if s == "" {
		return database.NullOrderStatus{}, nil
	}
	st := database.OrderStatus(s)
	switch st {
	case database.OrderStatusPending, database.OrderStatusConfirmed, database.OrderStatusPreparing,
		database.OrderStatusReady, database.OrderStatusCompleted, database.OrderStatusCancelled:
		return database.NullOrderStatus{OrderStatus: st, Valid: true}, nil
	}
	return database.NullOrderStatus{}, apperr.Validation("invalid status %q", s)
}

func money(n pgtype.Numeric) decimal.Decimal {
	return database.NumericToDecimal(n)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
