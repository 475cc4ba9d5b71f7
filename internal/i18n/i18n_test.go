package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
	if got := T(ctx, "LoginError"); got != "Invalid username or password." {
		t.Errorf("T(LoginError) = %q", got)
	}

	// Unknown IDs pass through.
	if got := T(ctx, "NoSuchMessage"); got != "NoSuchMessage" {
		t.Errorf("T(NoSuchMessage) = %q", got)
	}

	// A bare context falls back to the English localizer.
	if got := T(context.Background(), "SubmitSuccess"); got != "Evaluation submitted. Thank you!" {
		t.Errorf("T without localizer = %q", got)
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "PasswordMismatch")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Middleware("en")(next).ServeHTTP(httptest.NewRecorder(), req)

	if got != "New passwords do not match." {
		t.Errorf("translated via middleware = %q", got)
	}
}
