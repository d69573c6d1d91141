package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"petitshop/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validationError carries per-field validator failures.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string { return "validation failed" }

// bind parses the JSON body into out and runs the struct validator on it.
func bind(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	if err := v.Struct(out); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.BadRequest("Invalid request body")
		}
		fields := make(map[string]string, len(verrs))
		for _, e := range verrs {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return &validationError{fields: fields}
	}
	return nil
}

// respondError writes err as a JSON problem response.
func respondError(c *fiber.Ctx, log *slog.Logger, err error) error {
	if verr, ok := err.(*validationError); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"errors": verr.fields,
		})
	}

	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		log.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()), slog.String("path", c.Path()), slog.Any("error", err))
	}
	return c.Status(kind.HTTPStatus()).JSON(fiber.Map{"error": apperrors.Message(err)})
}

func statusOf(err error) int {
	return apperrors.KindOf(err).HTTPStatus()
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil {
		return 0, apperrors.BadRequest("Invalid %s", name)
	}
	return uint(n), nil
}

// queryUint reads an optional numeric query parameter.
func queryUint(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return nil, apperrors.BadRequest("Invalid %s", name)
	}
	v := uint(n)
	return &v, nil
}

// flexibleIDs accepts a JSON array mixing numbers and strings.
type flexibleIDs []string

func (ids *flexibleIDs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("invalid id %s", string(r))
		}
		out = append(out, n.String())
	}
	*ids = out
	return nil
}
