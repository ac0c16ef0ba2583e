package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	statusOk    = "Ok"
	statusError = "Error"
)

// envelope is the shape of every response body.
type envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// maxBodyBytes caps the request body accepted by decode.
const maxBodyBytes = 1 << 20

func decode(rw http.ResponseWriter, r *http.Request, into interface{}) error {
	rawJson, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(rawJson, into)
}

func respond(ctx context.Context, rw http.ResponseWriter, status int, data interface{}) {
	ctx, span := otel.GetTracerProvider().Tracer("").Start(ctx, "handler.respond")
	span.SetAttributes(attribute.Int("http.status", status))
	defer span.End()

	if status == http.StatusNoContent || data == nil {
		rw.WriteHeader(status)
		return
	}

	rawJson, err := json.Marshal(data)
	if err != nil {
		panic("respond-json-marshal:" + err.Error())
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	rw.Write(rawJson)
}

func respondOk(ctx context.Context, rw http.ResponseWriter, status int, data interface{}) {
	respond(ctx, rw, status, envelope{Status: statusOk, Data: data})
}

func respondErr(ctx context.Context, rw http.ResponseWriter, status int, message string) {
	respond(ctx, rw, status, envelope{
		Status: statusError,
		Data:   strings.TrimPrefix(message, "Value error, "),
	})
}
