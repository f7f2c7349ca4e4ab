package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/madarame/studio-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityEcho(c *gin.Context) {
	if userID, exists := c.Get("userID"); exists {
		c.JSON(http.StatusOK, gin.H{"userID": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userID": nil})
}

func TestAuthOptionalAllowsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", AuthOptional(), identityEcho)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 200, w.Code)
}

func TestAuthOptionalSetsUserID(t *testing.T) {
	token, err := auth.GenerateToken(42)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", AuthOptional(), identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":42`)
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", AuthRequired(), identityEcho)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 401, w.Code)
}

func TestAdminRequired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	token, err := auth.GenerateToken(5)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", AuthRequired(), AdminRequired(db), identityEcho)

	t.Run("administrator passes", func(t *testing.T) {
		mock.ExpectQuery("SELECT role FROM users").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("administrator"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		mock.ExpectQuery("SELECT role FROM users").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("customer"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, 403, w.Code)
	})
}
