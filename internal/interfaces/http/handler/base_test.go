package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/interfaces/http/dto"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"warehouse auth", fmt.Errorf("sync: %w", fulfillment.ErrWarehouseAuthFailed), http.StatusBadGateway, dto.ErrCodeWarehouseUnavailable},
		{"warehouse bad response", fulfillment.ErrWarehouseInvalidResponse, http.StatusBadGateway, dto.ErrCodeWarehouseUnavailable},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			require.Equal(t, tt.wantCode, w.Code)
			var resp dto.Response
			decodeBody(t, w, &resp)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestGetTenantID(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		header  string
		want    uuid.UUID
		wantErr bool
	}{
		{"valid", id.String(), id, false},
		{"missing", "", uuid.Nil, true},
		{"malformed", "tenant-1", uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("X-Tenant-ID", tt.header)
			}

			got, err := getTenantID(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
