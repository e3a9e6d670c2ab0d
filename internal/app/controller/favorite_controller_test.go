package controller

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aiqfome/favorites-backend/internal/app/model"
	apperrors "github.com/aiqfome/favorites-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeViews(t *testing.T, body []byte) []model.FavoriteView {
	var views []model.FavoriteView
	require.NoError(t, json.Unmarshal(body, &views))
	return views
}

func TestFavoriteController_AddAndList(t *testing.T) {
	env := setupControllerTest(t, 1, 2, 3)
	maria, token := env.createCustomer(t, "maria@example.com", model.RoleUser)
	path := "/customers/" + itoa(maria.ID) + "/favorites"

	w := env.do(t, http.MethodPost, path, token, AddFavoritesRequest{ProductIDs: []uint{2, 1, 2, 404}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	views := decodeViews(t, w.Body.Bytes())
	require.Len(t, views, 2)
	assert.Equal(t, uint(2), views[0].Product.ID)
	assert.Equal(t, uint(1), views[1].Product.ID)
	assert.Equal(t, maria.ID, views[0].CustomerID)

	// a repeated add is silently skipped
	w = env.do(t, http.MethodPost, path, token, AddFavoritesRequest{ProductIDs: []uint{1, 3}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, decodeViews(t, w.Body.Bytes()), 3)

	w = env.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	views = decodeViews(t, w.Body.Bytes())
	require.Len(t, views, 3)
	assert.Equal(t, "Mens Casual Slim Fit", views[2].Product.Title)
}

func TestFavoriteController_Add_Validation(t *testing.T) {
	env := setupControllerTest(t, 1)
	maria, token := env.createCustomer(t, "maria@example.com", model.RoleUser)
	path := "/customers/" + itoa(maria.ID) + "/favorites"

	tooMany := make([]uint, MaxFavoritesPerRequest+1)
	for i := range tooMany {
		tooMany[i] = uint(i + 1)
	}

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing product_ids", map[string]interface{}{}},
		{"empty product_ids", map[string]interface{}{"product_ids": []uint{}}},
		{"zero id", map[string]interface{}{"product_ids": []int{1, 0}}},
		{"negative id", map[string]interface{}{"product_ids": []int{-1}}},
		{"too many ids", AddFavoritesRequest{ProductIDs: tooMany}},
		{"wrong type", map[string]interface{}{"product_ids": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, path, token, tt.body)
			assertErrorCode(t, w, http.StatusBadRequest, apperrors.ValidationInvalidInput)
		})
	}
}

func TestFavoriteController_OnlySelf(t *testing.T) {
	env := setupControllerTest(t, 1)
	maria, _ := env.createCustomer(t, "maria@example.com", model.RoleUser)
	_, joaoToken := env.createCustomer(t, "joao@example.com", model.RoleUser)
	_, adminToken := env.createCustomer(t, "admin@example.com", model.RoleAdmin)
	path := "/customers/" + itoa(maria.ID) + "/favorites"

	w := env.do(t, http.MethodGet, path, joaoToken, nil)
	assertErrorCode(t, w, http.StatusForbidden, apperrors.AuthzOwnerOnly)

	w = env.do(t, http.MethodPost, path, adminToken, AddFavoritesRequest{ProductIDs: []uint{1}})
	assertErrorCode(t, w, http.StatusForbidden, apperrors.AuthzOwnerOnly)
}

func TestFavoriteController_Remove(t *testing.T) {
	env := setupControllerTest(t, 1, 2)
	maria, token := env.createCustomer(t, "maria@example.com", model.RoleUser)
	path := "/customers/" + itoa(maria.ID) + "/favorites"

	w := env.do(t, http.MethodPost, path, token, AddFavoritesRequest{ProductIDs: []uint{1, 2}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, path+"/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeMap(t, w)["ok"])

	w = env.do(t, http.MethodDelete, path+"/1", token, nil)
	assertErrorCode(t, w, http.StatusNotFound, apperrors.FavoriteNotFound)

	w = env.do(t, http.MethodDelete, path+"/abc", token, nil)
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ValidationInvalidID)

	w = env.do(t, http.MethodGet, path, token, nil)
	views := decodeViews(t, w.Body.Bytes())
	require.Len(t, views, 1)
	assert.Equal(t, uint(2), views[0].Product.ID)
}

func TestFavoriteController_Add_CatalogDownSkipsProducts(t *testing.T) {
	env := setupControllerTest(t, 1)
	maria, token := env.createCustomer(t, "maria@example.com", model.RoleUser)
	env.catalog.unavailable = true

	w := env.do(t, http.MethodPost, "/customers/"+itoa(maria.ID)+"/favorites", token, AddFavoritesRequest{ProductIDs: []uint{1}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, decodeViews(t, w.Body.Bytes()))
}
