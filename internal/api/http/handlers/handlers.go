package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-ir/storefront-service/internal/api/dto"
	"github.com/storefront-ir/storefront-service/internal/domain"
)

// pageWindow reads page/page_size. Without page_size every match is returned.
func pageWindow(c *fiber.Ctx) (limit, offset int) {
	pageSize := parseInt(c.Query("page_size"), 0)
	if pageSize == 0 {
		return 0, 0
	}
	page := parseInt(c.Query("page"), 1)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ownerResponse(owner domain.UserSummary) dto.OwnerResponse {
	return dto.OwnerResponse{ID: owner.ID, Name: owner.Name, Email: owner.Email}
}
