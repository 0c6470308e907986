package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/erazemk/garderoba/internal/auth"
	"github.com/erazemk/garderoba/internal/blob"
	"github.com/erazemk/garderoba/internal/canvas"
	"github.com/erazemk/garderoba/internal/closet"
	"github.com/erazemk/garderoba/internal/db"
	"github.com/erazemk/garderoba/internal/imaging"
	"github.com/erazemk/garderoba/internal/model"
	"github.com/erazemk/garderoba/internal/store"
)

const testJWTSecret = "test-secret"

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)

	objects, err := blob.OpenInMemory()
	if err != nil {
		t.Fatalf("opening object store: %v", err)
	}
	t.Cleanup(func() { objects.Close() })

	sessions, err := canvas.NewSessions(16)
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	loaders, err := NewLoaderCache(16)
	if err != nil {
		t.Fatalf("NewLoaderCache: %v", err)
	}

	repo := &closet.Repository{
		DB:      database,
		Objects: objects,
		Imaging: imaging.Options{MaxDimension: 64, Quality: 70},
	}
	router := NewRouter(Deps{
		DB:        database,
		JWTSecret: testJWTSecret,
		Closet:    repo,
		Objects:   objects,
		Sessions:  sessions,
		Loaders:   loaders,
		Now:       func() time.Time { return testNow },
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	repo.PublicURL = server.URL

	// Create admin user.
	hash, _ := auth.HashPassword("password")
	store.CreateUser(context.Background(), database, "admin", hash, model.RoleAdmin)

	return server, login(t, server, "admin", "password")
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp tokenResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func signup(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d", resp.StatusCode)
	}

	var signupResp tokenResponse
	json.NewDecoder(resp.Body).Decode(&signupResp)
	return signupResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends an authenticated JSON request and decodes the response into out
// when out is non-nil.
func do(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 16))
	for x := 0; x < 12; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{20, 40, 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

// postItem submits the add-item form with the given fields and photo count.
func postItem(t *testing.T, server *httptest.Server, token string, fields map[string]string, photos int) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for i := range photos {
		fw, err := mw.CreateFormFile("images", fmt.Sprintf("photo%d.png", i))
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(testPNG(t))
	}
	mw.Close()

	req, _ := http.NewRequest("POST", server.URL+"/api/items", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create item request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func itemFields(name, category, brand, cost, date string) map[string]string {
	return map[string]string{
		"name":         name,
		"brand":        brand,
		"category":     category,
		"size":         "general_m",
		"color":        "black",
		"condition":    "new",
		"purchaseCost": cost,
		"purchaseDate": date,
	}
}

func itemNames(items []model.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Test unknown user.
	body, _ = json.Marshal(map[string]string{"username": "nobody", "password": "password"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSignupAndLogout(t *testing.T) {
	server, _ := setupTestServer(t)

	token := signup(t, server, "ana")
	if code := do(t, "GET", server.URL+"/api/items", token, nil, nil); code != http.StatusOK {
		t.Fatalf("expected 200 after signup, got %d", code)
	}

	// Duplicate username.
	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "password123"})
	resp, _ := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate signup, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if code := do(t, "POST", server.URL+"/api/auth/logout", token, nil, nil); code != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", code)
	}
	if code := do(t, "GET", server.URL+"/api/items", token, nil, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a logged out token, got %d", code)
	}
}

func TestSignupValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short password", "ana", "short"},
		{"short username", "an", "password123"},
		{"bad characters", "ana marija", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"username": tt.username, "password": tt.password})
			resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestChangePassword(t *testing.T) {
	server, _ := setupTestServer(t)
	token := signup(t, server, "ana")

	wrong := map[string]string{"current_password": "nope", "new_password": "newpassword"}
	if code := do(t, "PUT", server.URL+"/api/auth/password", token, wrong, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", code)
	}

	req := map[string]string{"current_password": "password123", "new_password": "newpassword"}
	if code := do(t, "PUT", server.URL+"/api/auth/password", token, req, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	login(t, server, "ana", "newpassword")
}

func TestItemsAPIFlow(t *testing.T) {
	server, _ := setupTestServer(t)
	token := signup(t, server, "ana")

	for _, f := range []map[string]string{
		itemFields("Denim jacket", "tops_jackets", "Levi's", "80", "2024-03-10"),
		itemFields("Chinos", "bottoms_pants", "Uniqlo", "40", "2024-05-01"),
		itemFields("Linen shirt", "Shirts", "Uniqlo", "25.5", "2024-05-20"),
		itemFields("Tote", "accessories_bags", "", "15", "2023-11-02"),
	} {
		resp := postItem(t, server, token, f, 1)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", f["name"], resp.StatusCode)
		}
	}

	var list itemsResponse
	url := server.URL + "/api/items?Categories=Tops&sort=mostExpensive"
	if code := do(t, "GET", url, token, nil, &list); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if got, want := itemNames(list.Items), []string{"Denim jacket", "Linen shirt"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if list.Total != 4 {
		t.Errorf("expected total 4, got %d", list.Total)
	}
	if list.Sort != model.SortCostDesc {
		t.Errorf("expected sort %q, got %q", model.SortCostDesc, list.Sort)
	}

	url = server.URL + "/api/items?brand=uniqlo&sort=reverseDate"
	if code := do(t, "GET", url, token, nil, &list); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if got, want := itemNames(list.Items), []string{"Chinos", "Linen shirt"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Default order is newest first.
	if code := do(t, "GET", server.URL+"/api/items", token, nil, &list); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	want := []string{"Linen shirt", "Chinos", "Denim jacket", "Tote"}
	if got := itemNames(list.Items); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Detail and photo.
	first := list.Items[0]
	var item model.Item
	if code := do(t, "GET", server.URL+"/api/items/"+first.ID, token, nil, &item); code != http.StatusOK {
		t.Fatalf("expected 200 for item, got %d", code)
	}
	if item.Category != (model.Choice{Group: "Tops", Value: "Shirts"}) {
		t.Errorf("expected Tops/Shirts, got %+v", item.Category)
	}
	if len(item.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(item.Images))
	}

	resp, err := http.Get(item.Images[0])
	if err != nil {
		t.Fatalf("fetching photo: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for photo, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}
	if len(data) == 0 {
		t.Error("expected photo data")
	}

	if code := do(t, "GET", server.URL+"/api/items/missing", token, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown item, got %d", code)
	}
}

func TestItemsScopedToUser(t *testing.T) {
	server, _ := setupTestServer(t)
	ana := signup(t, server, "ana")
	bor := signup(t, server, "bor")

	resp := postItem(t, server, ana, itemFields("Scarf", "accessories_scarfs", "Acne", "60", "2024-01-05"), 1)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.Item
	json.NewDecoder(resp.Body).Decode(&created)

	var list itemsResponse
	do(t, "GET", server.URL+"/api/items", bor, nil, &list)
	if len(list.Items) != 0 {
		t.Errorf("expected empty closet for other user, got %v", itemNames(list.Items))
	}
	if code := do(t, "GET", server.URL+"/api/items/"+created.ID, bor, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's item, got %d", code)
	}
}

func TestCreateItemValidation(t *testing.T) {
	server, _ := setupTestServer(t)
	token := signup(t, server, "ana")

	tests := []struct {
		name   string
		fields map[string]string
		photos int
		field  string
	}{
		{"missing name", itemFields("", "tops_coats", "", "10", "2024-01-01"), 1, "name"},
		{"unknown category", itemFields("Coat", "spacesuits", "", "10", "2024-01-01"), 1, "category"},
		{"bad cost", itemFields("Coat", "tops_coats", "", "ten", "2024-01-01"), 1, "purchaseCost"},
		{"negative cost", itemFields("Coat", "tops_coats", "", "-1", "2024-01-01"), 1, "purchaseCost"},
		{"bad date", itemFields("Coat", "tops_coats", "", "10", "yesterday"), 1, "purchaseDate"},
		{"no photos", itemFields("Coat", "tops_coats", "", "10", "2024-01-01"), 0, "images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postItem(t, server, token, tt.fields, tt.photos)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var body validationResponse
			json.NewDecoder(resp.Body).Decode(&body)
			if _, ok := body.Fields[tt.field]; !ok {
				t.Errorf("expected error for %s, got %v", tt.field, body.Fields)
			}
		})
	}

	var list itemsResponse
	do(t, "GET", server.URL+"/api/items", token, nil, &list)
	if list.Total != 0 {
		t.Errorf("expected no items after failed creates, got %d", list.Total)
	}
}

func TestBrandsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)
	token := signup(t, server, "ana")

	for i, brand := range []string{"Uniqlo", "uniqlo", "Acne Studios", "Arket"} {
		f := itemFields(fmt.Sprintf("Item %d", i), "tops_shirts", brand, "10", "2024-01-01")
		if resp := postItem(t, server, token, f, 1); resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
	}

	var all []string
	do(t, "GET", server.URL+"/api/brands", token, nil, &all)
	if want := []string{"Acne Studios", "Arket", "Uniqlo"}; !slices.Equal(all, want) {
		t.Errorf("expected %v, got %v", want, all)
	}

	var suggested []string
	do(t, "GET", server.URL+"/api/brands?q=a&limit=1", token, nil, &suggested)
	if want := []string{"Acne Studios"}; !slices.Equal(suggested, want) {
		t.Errorf("expected %v, got %v", want, suggested)
	}

	if code := do(t, "GET", server.URL+"/api/brands?q=a&limit=zero", token, nil, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)
	token := signup(t, server, "ana")

	for _, f := range []map[string]string{
		itemFields("Coat", "tops_coats", "Arket", "120", "2024-06-02"),
		itemFields("Shorts", "bottoms_shorts", "Arket", "30", "2024-05-12"),
		itemFields("Cap", "accessories_hats", "", "15", "2023-08-30"),
	} {
		if resp := postItem(t, server, token, f, 1); resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
	}

	var summary closet.Summary
	if code := do(t, "GET", server.URL+"/api/stats", token, nil, &summary); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if summary.Year != 2024 {
		t.Errorf("expected year 2024, got %d", summary.Year)
	}
	if summary.ItemCount != 3 {
		t.Errorf("expected 3 items, got %d", summary.ItemCount)
	}
	if got := summary.TotalSpent.StringFixed(2); got != "165.00" {
		t.Errorf("expected total 165.00, got %s", got)
	}
	if len(summary.LastThree) != 3 {
		t.Fatalf("expected 3 trailing months, got %d", len(summary.LastThree))
	}
	if june := summary.LastThree[2]; june.Count != 1 || june.Sum.StringFixed(2) != "120.00" {
		t.Errorf("expected June 1 item 120.00, got %d %s", june.Count, june.Sum.StringFixed(2))
	}
	if !slices.Equal(summary.Years, []int{2024, 2023}) {
		t.Errorf("expected years [2024 2023], got %v", summary.Years)
	}

	do(t, "GET", server.URL+"/api/stats?year=2023", token, nil, &summary)
	if aug := summary.YearByMonth[7]; aug.Count != 1 {
		t.Errorf("expected one item in August 2023, got %d", aug.Count)
	}

	if code := do(t, "GET", server.URL+"/api/stats?year=soon", token, nil, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad year, got %d", code)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	var opts optionsResponse
	if code := do(t, "GET", server.URL+"/api/options", "", nil, &opts); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(opts.Categories) != len(model.CategoryOptions) {
		t.Errorf("expected %d category groups, got %d", len(model.CategoryOptions), len(opts.Categories))
	}
	if len(opts.Sorts) != 4 || opts.Sorts[0].Value != model.SortDateDesc {
		t.Errorf("unexpected sorts %+v", opts.Sorts)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, path := range []string{"/api/items", "/api/brands", "/api/stats", "/api/users"} {
		resp, _ := http.Get(server.URL + path)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	if code := do(t, "GET", server.URL+"/api/items", "garbage", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", code)
	}
}

func TestRoleBasedAccess(t *testing.T) {
	server, adminToken := setupTestServer(t)

	// Create a regular user as admin.
	newUser := map[string]string{"username": "ana", "password": "password123"}
	var created model.User
	if code := do(t, "POST", server.URL+"/api/users", adminToken, newUser, &created); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if created.Role != model.RoleUser {
		t.Errorf("expected role %q, got %q", model.RoleUser, created.Role)
	}

	userToken := login(t, server, "ana", "password123")
	if code := do(t, "GET", server.URL+"/api/users", userToken, nil, nil); code != http.StatusForbidden {
		t.Errorf("expected 403 for user listing users, got %d", code)
	}

	var users []model.Member
	do(t, "GET", server.URL+"/api/users", adminToken, nil, &users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	// Deleting the account invalidates its sessions.
	path := fmt.Sprintf("%s/api/users/%d", server.URL, created.ID)
	if code := do(t, "DELETE", path, adminToken, nil, nil); code != http.StatusOK {
		t.Fatalf("expected 200 from delete, got %d", code)
	}
	if code := do(t, "GET", server.URL+"/api/items", userToken, nil, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for deleted user, got %d", code)
	}
	if code := do(t, "DELETE", path, adminToken, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", code)
	}
}

func TestCanvasDemoFlow(t *testing.T) {
	server, _ := setupTestServer(t)

	var board canvasResponse
	req := map[string]any{"width": 1280, "height": 800, "source": "demo"}
	if code := do(t, "POST", server.URL+"/api/canvas", "", req, &board); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if len(board.State.Tokens) != canvas.DemoImages+4 {
		t.Fatalf("expected %d tokens, got %d", canvas.DemoImages+4, len(board.State.Tokens))
	}

	start := tokenByID(t, board.State, 3)
	events := map[string]any{"events": []canvas.Event{
		{Type: canvas.EventPointerDown, Token: 3, Pointer: canvas.Pointer{Kind: canvas.PointerMouse, X: start.X + 5, Y: start.Y + 5}},
		{Type: canvas.EventPointerMove, Pointer: canvas.Pointer{Kind: canvas.PointerMouse, DX: 10, DY: -4}},
		{Type: canvas.EventPointerUp},
	}}
	base := server.URL + "/api/canvas/" + board.ID
	if code := do(t, "POST", base+"/events", "", events, &board); code != http.StatusOK {
		t.Fatalf("expected 200 from events, got %d", code)
	}
	moved := tokenByID(t, board.State, 3)
	if moved.X != start.X+10 || moved.Y != start.Y-4 {
		t.Errorf("expected token at (%v, %v), got (%v, %v)", start.X+10, start.Y-4, moved.X, moved.Y)
	}
	if board.State.Mode != canvas.ModeIdle || board.State.Selected == nil || *board.State.Selected != 3 {
		t.Errorf("expected idle with token 3 selected, got %s %v", board.State.Mode, board.State.Selected)
	}

	do(t, "POST", base+"/tokens/3/front", "", nil, &board)
	do(t, "POST", base+"/tokens/3/back", "", nil, &board)
	if z := tokenByID(t, board.State, 3).ZIndex; z != start.ZIndex {
		t.Errorf("expected z-index %d after front and back, got %d", start.ZIndex, z)
	}

	if code := do(t, "POST", base+"/tokens/99/front", "", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown token, got %d", code)
	}
	bad := map[string]any{"events": []map[string]string{{"type": "pinch"}}}
	if code := do(t, "POST", base+"/events", "", bad, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown event, got %d", code)
	}
	if code := do(t, "GET", server.URL+"/api/canvas/nope", "", nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown board, got %d", code)
	}
}

func TestCanvasClosetBoard(t *testing.T) {
	server, _ := setupTestServer(t)
	ana := signup(t, server, "ana")
	bor := signup(t, server, "bor")

	for i := range 3 {
		f := itemFields(fmt.Sprintf("Item %d", i), "tops_shirts", "", "10", "2024-01-01")
		if resp := postItem(t, server, ana, f, i+1); resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
	}

	req := map[string]any{"width": 390, "height": 844, "source": "closet"}
	if code := do(t, "POST", server.URL+"/api/canvas", "", req, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous closet board, got %d", code)
	}

	var board canvasResponse
	if code := do(t, "POST", server.URL+"/api/canvas", ana, req, &board); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	// One token per photo: 1 + 2 + 3.
	if len(board.State.Tokens) != 6 {
		t.Fatalf("expected 6 tokens, got %d", len(board.State.Tokens))
	}
	for _, tok := range board.State.Tokens {
		if tok.Kind != canvas.KindImage || tok.Width != 90 {
			t.Errorf("expected narrow image token, got %+v", tok)
		}
	}

	if code := do(t, "GET", server.URL+"/api/canvas/"+board.ID, bor, nil, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's board, got %d", code)
	}
	if code := do(t, "GET", server.URL+"/api/canvas/"+board.ID, ana, nil, nil); code != http.StatusOK {
		t.Errorf("expected 200 for own board, got %d", code)
	}
}

func TestBoardPhotos(t *testing.T) {
	items := []model.Item{
		{Images: []string{"a1", "a2"}},
		{Images: nil},
		{Images: []string{"c1", "c2", "c3"}},
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{30, []string{"a1", "a2", "c1", "c2", "c3"}},
		{3, []string{"a1", "a2", "c1"}},
		{0, nil},
	}
	for _, tt := range tests {
		if got := boardPhotos(items, tt.limit); !slices.Equal(got, tt.want) {
			t.Errorf("boardPhotos(limit %d) = %v, want %v", tt.limit, got, tt.want)
		}
	}
}

func tokenByID(t *testing.T, s canvas.State, id int) canvas.Token {
	t.Helper()
	for _, tok := range s.Tokens {
		if tok.ID == id {
			return tok
		}
	}
	t.Fatalf("token %d not found", id)
	return canvas.Token{}
}

func TestLoaderCacheSupersedes(t *testing.T) {
	cache, err := NewLoaderCache(4)
	if err != nil {
		t.Fatalf("NewLoaderCache: %v", err)
	}
	if cache.get(1, "closet") != cache.get(1, "closet") {
		t.Error("expected the same loader for the same view")
	}
	if cache.get(1, "closet") == cache.get(2, "closet") {
		t.Error("expected separate loaders per user")
	}

	l := cache.get(1, "closet")
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		_, err := l.Load(context.Background(), func(ctx context.Context) ([]model.Item, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
		done <- err
	}()
	<-started

	items, err := l.Load(context.Background(), func(context.Context) ([]model.Item, error) {
		return []model.Item{{Name: "fresh"}}, nil
	})
	if err != nil || len(items) != 1 {
		t.Fatalf("expected the newer load to win, got %v %v", items, err)
	}
	if err := <-done; !errors.Is(err, closet.ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
}
