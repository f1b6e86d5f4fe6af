package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// claimUserID - claim с идентификатором игрока, который выдает сервис идентификации.
const claimUserID = "user_id"

var (
	ErrNoClaims      = errors.New("user claims not found in context or invalid type")
	ErrInvalidUserID = errors.New("invalid user id claim")
)

// GetUserIDFromContext возвращает id игрока из claims, положенных Authenticate.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, ErrNoClaims
	}
	raw, ok := claims[claimUserID]
	if !ok {
		return 0, fmt.Errorf("%w: %q is missing", ErrInvalidUserID, claimUserID)
	}

	id, err := playerIDFromClaim(raw)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: %d is not a positive id", ErrInvalidUserID, id)
	}
	return id, nil
}

// playerIDFromClaim: JSON-числа приходят как float64, но часть выпускающих сервисов кладет id строкой.
func playerIDFromClaim(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v is not an integer id", ErrInvalidUserID, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidUserID, err)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidUserID, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: unexpected type %T", ErrInvalidUserID, raw)
	}
}
