package controllers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solenne/shopcore/config"
	"github.com/solenne/shopcore/controllers"
)

// newCreateRouter wires Create() with no Mongo, cache or GCS behind it; every
// test here must be answered before those dependencies are touched.
func newCreateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctl := controllers.NewProductController(config.Config{}, nil, nil, nil, zap.NewNop().Sugar())
	r := gin.New()
	r.POST("/products", ctl.Create())
	return r
}

func postMultipart(t *testing.T, r *gin.Engine, data string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if data != "" {
		if err := mw.WriteField("data", data); err != nil {
			t.Fatalf("write data field: %v", err)
		}
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "product.png")
		if err != nil {
			t.Fatalf("create image part: %v", err)
		}
		if _, err := fw.Write([]byte("png-bytes")); err != nil {
			t.Fatalf("write image part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// A deployment without image hosting must reject an image upload with the
// stable error envelope instead of panicking on the nil client.
func TestCreateWithImageAndNoGCSClient(t *testing.T) {
	r := newCreateRouter(t)

	w := postMultipart(t, r, `{"name":"Mouse","description":"a mouse","price":20,"category":"gear"}`, true)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Fatalf("error envelope missing: %s", w.Body.String())
	}
}

func TestCreateValidation(t *testing.T) {
	r := newCreateRouter(t)

	cases := []struct {
		name string
		data string
	}{
		{"missing data part", ""},
		{"malformed json", `{"name":`},
		{"missing name", `{"description":"d","price":20,"category":"gear"}`},
		{"missing description", `{"name":"Mouse","price":20,"category":"gear"}`},
		{"zero price", `{"name":"Mouse","description":"d","price":0,"category":"gear"}`},
		{"missing category", `{"name":"Mouse","description":"d","price":20}`},
	}
	for _, tc := range cases {
		w := postMultipart(t, r, tc.data, false)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400; body %s", tc.name, w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"success":false`) {
			t.Errorf("%s: error envelope missing: %s", tc.name, w.Body.String())
		}
	}
}
