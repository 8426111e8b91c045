package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
		out    string
	}{
		{"ok", http.StatusOK, `<avertizari><avertizare zona="Cluj"/></avertizari>`, 0, "ok\nroot=<avertizari> warnings=1 tag=<avertizare>\n"},
		{"empty feed", http.StatusOK, `<avertizari/>`, 0, "ok\nroot=<avertizari> warnings=0\n"},
		{"not xml", http.StatusOK, `<html><body>`, 1, "invalid_xml\n"},
		{"not found", http.StatusNotFound, ``, 1, "cannot_connect\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var stdout, stderr bytes.Buffer
			code := run([]string{"-url", srv.URL, "-timeout", "2s"}, &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.out, stdout.String())
		})
	}
}

func TestRun_Dump(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<avertizari><avertizare zona="Cluj"/></avertizari>`))
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{"-url", srv.URL, "-dump"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), `<avertizare zona="Cluj"/>`)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, &stdout, &stderr))
}
