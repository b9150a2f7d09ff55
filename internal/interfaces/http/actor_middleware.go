package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/application/dto"
)

// Header y Locals key del responsable de la operación.
const (
	HeaderUserID = "X-User-ID"
	LocalUserID  = "user_id"
)

// ActorMiddleware lee el responsable desde X-User-ID y lo deja en c.Locals.
// La autenticación la resuelve el gateway; aquí sólo se valida el formato.
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(HeaderUserID))
		if raw == "" {
			return c.Next()
		}
		if _, err := uuid.Parse(raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_USER", Message: "X-User-ID debe ser un UUID"})
		}
		c.Locals(LocalUserID, raw)
		return c.Next()
	}
}

// GetUserID devuelve el responsable del contexto (después de ActorMiddleware).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
