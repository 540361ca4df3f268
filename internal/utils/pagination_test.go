package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		wantPage    int
		wantLimit   int
		wantOffset  int
	}{
		{"defaults for zero", 0, 0, 1, 20, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"limit too large", 3, 500, 3, 20, 40},
		{"negative page", -4, 5, 1, 5, 0},
		{"max limit", 1, 100, 1, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginationParams(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/projects?page=3&limit=5", nil)

	p := GetPaginationParams(c)

	assert.Equal(t, PaginationParams{Page: 3, Limit: 5, Offset: 10}, p)
}

func TestPaginationParams_Response(t *testing.T) {
	p := NewPaginationParams(1, 20)

	assert.Equal(t, 0, p.Response(0).TotalPages)
	assert.Equal(t, 1, p.Response(20).TotalPages)
	assert.Equal(t, 2, p.Response(21).TotalPages)
	assert.Equal(t, int64(21), p.Response(21).Total)
}
