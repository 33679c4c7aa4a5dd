package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/portal"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/pkg/circuitbreaker"
)

// newPortalServer fakes the WCU portal: a login endpoint issuing a session
// cookie and two authenticated JSON endpoints.
func newPortalServer(t *testing.T, profileJSON, gradesJSON string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("password") != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "NSR/2214/13", r.FormValue("student_id"))
		assert.Equal(t, "Main", r.FormValue("campus"))
		http.SetCookie(w, &http.Cookie{Name: "wcu_session", Value: "sess-1"})
		w.WriteHeader(http.StatusOK)
	})

	authed := func(payload string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("wcu_session")
			if err != nil || cookie.Value != "sess-1" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(payload))
		}
	}
	mux.HandleFunc("/api/student/profile", authed(profileJSON))
	mux.HandleFunc("/api/student/grades", authed(gradesJSON))

	return httptest.NewServer(mux)
}

func testCreds() domain.Credentials {
	return domain.Credentials{Campus: "Main", StudentID: "NSR/2214/13", Password: "correct"}
}

func TestClient_FetchProfile_WithPhoto(t *testing.T) {
	srv := newPortalServer(t,
		`{"photo_url":"https://portal.wcu.edu.et/photos/1.jpg","caption":"Abebe Kebede\nSoftware Engineering"}`,
		`{"lines":[]}`)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	profile, err := client.FetchProfile(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileWithPhoto, profile.Kind)
	assert.Equal(t, "https://portal.wcu.edu.et/photos/1.jpg", profile.PhotoURL)
	assert.Contains(t, profile.Caption, "Abebe Kebede")
}

func TestClient_FetchProfile_Graduate(t *testing.T) {
	srv := newPortalServer(t,
		`{"message":"It seems you are a graduate, so I am skipping your profile and showing your grade report below."}`,
		`{"lines":[]}`)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	profile, err := client.FetchProfile(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileGraduate, profile.Kind)
}

func TestClient_FetchProfile_Plain(t *testing.T) {
	srv := newPortalServer(t, `{"text":"Name: Abebe Kebede"}`, `{"lines":[]}`)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	profile, err := client.FetchProfile(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, domain.ProfilePlain, profile.Kind)
	assert.Equal(t, "Name: Abebe Kebede", profile.Text)
}

func TestClient_FetchGrades(t *testing.T) {
	srv := newPortalServer(t, `{}`,
		`{"lines":["Course A  B+","Academic Status: Promoted"]}`)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	lines, err := client.FetchGrades(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, []string{"Course A  B+", "Academic Status: Promoted"}, lines)
}

func TestClient_BadPassword(t *testing.T) {
	srv := newPortalServer(t, `{}`, `{}`)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	creds := testCreds()
	creds.Password = "wrong"
	_, err := client.FetchGrades(context.Background(), creds)
	require.Error(t, err)

	var gatewayErr *domain.GatewayError
	assert.True(t, errors.As(err, &gatewayErr))
	assert.ErrorIs(t, err, domain.ErrAuthRejected)
}

func TestClient_BadPasswordsDoNotOpenCircuit(t *testing.T) {
	srv := newPortalServer(t, `{}`, `{"lines":["Semester One"]}`)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	// One student mistyping their password over and over must not trip the
	// breaker for everyone else.
	bad := testCreds()
	bad.Password = "wrong"
	for i := 0; i < 10; i++ {
		_, err := client.FetchGrades(context.Background(), bad)
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	}

	lines, err := client.FetchGrades(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, []string{"Semester One"}, lines)
}

func TestClient_ServerErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := client.FetchProfile(context.Background(), testCreds())
	require.Error(t, err)

	var gatewayErr *domain.GatewayError
	assert.True(t, errors.As(err, &gatewayErr))
	assert.Equal(t, "fetch profile", gatewayErr.Op)
}
