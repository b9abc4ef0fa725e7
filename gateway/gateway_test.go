package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"formationdesk/backend/models"
)

func TestPaymentInitialize(t *testing.T) {
	var got models.PaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"status":"success","data":{"link":"https://pay.example/c/123"}}`))
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, srv.Client())
	sess, err := c.Initialize(context.Background(), models.PaymentRequest{Amount: "94.00", TxRef: "FD-1", Email: "a@b.co"})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if sess.CheckoutURL != "https://pay.example/c/123" {
		t.Fatalf("unexpected checkout url %q", sess.CheckoutURL)
	}
	if got.Amount != "94.00" || got.TxRef != "FD-1" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestPaymentInitializeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"email":["is invalid"]}}`))
	}))
	defer srv.Close()

	_, err := NewPaymentClient(srv.URL, srv.Client()).Initialize(context.Background(), models.PaymentRequest{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected status error, got %v", err)
	}
	if se.StatusCode != http.StatusUnprocessableEntity || se.Message != "is invalid" {
		t.Fatalf("unexpected status error %+v", se)
	}
}

func TestPaymentInitializeMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	if _, err := NewPaymentClient(srv.URL, srv.Client()).Initialize(context.Background(), models.PaymentRequest{}); err == nil {
		t.Fatal("expected error when checkout url is missing")
	}
}

func TestAuthLoginAndProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "tok", Path: "/", HttpOnly: true})
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("auth"); err != nil || ck.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"email":"a@b.co"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewAuthClient(srv.URL+"/login", srv.URL+"/profile", srv.Client())

	_, err := c.Login(context.Background(), "a@b.co", "wrong")
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "invalid credentials" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	cookies, err := c.Login(context.Background(), "a@b.co", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	ok, err := c.Profile(context.Background(), cookies)
	if err != nil || !ok {
		t.Fatalf("expected authenticated profile, got ok=%v err=%v", ok, err)
	}

	ok, err = c.Profile(context.Background(), nil)
	if err != nil || ok {
		t.Fatalf("expected unauthenticated profile, got ok=%v err=%v", ok, err)
	}
}
