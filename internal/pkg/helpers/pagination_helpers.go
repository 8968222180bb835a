package helpers

import (
	"strconv"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps (Number-1)*Size well inside an int64 and a
	// Postgres OFFSET.
	MaxPageNumber = 1_000_000
)

// Page is a 1-based page request. Build it with NewPage so out-of-range
// values fall back to the defaults.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows before this page.
func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.Size)
}

// Info describes the page within total items. An empty listing still has
// one page.
func (p Page) Info(total int64) dto.PaginationInfo {
	pages := 1
	if total > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return dto.PaginationInfo{
		CurrentPage: p.Number,
		TotalPages:  pages,
		PageSize:    p.Size,
		TotalItems:  total,
	}
}

// ParsePaginationParams reads ?page= and ?size=, ignoring malformed values.
func ParsePaginationParams(c *gin.Context) Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return NewPage(number, size)
}
