package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplinehq/shopline-backend/internal/cart"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

type stubCartService struct {
	line *cart.LineDTO
	err  error

	removedLine uuid.UUID
}

func (s *stubCartService) AddToCart(_ context.Context, _, _ uuid.UUID) (*cart.LineDTO, error) {
	return s.line, s.err
}

func (s *stubCartService) DecrementOrRemove(_ context.Context, _, _ uuid.UUID) (*cart.LineDTO, error) {
	return s.line, s.err
}

func (s *stubCartService) RemoveLine(_ context.Context, _, lineID uuid.UUID) error {
	s.removedLine = lineID
	return s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCartAddReturnsLine(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{line: &cart.LineDTO{ID: uuid.New(), ItemID: itemID, Quantity: 1, FinalPrice: decimal.RequireFromString("10")}}
	handler := CartAdd(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/add-to-cart/"+itemID.String(), "")
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data cart.LineDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemID != itemID {
		t.Fatalf("expected item %s got %s", itemID, envelope.Data.ItemID)
	}
}

func TestCartAddRejectsBadItemID(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAdd(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/add-to-cart/not-a-uuid", "")
	req = withURLParam(req, "itemId", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartDecrementNoActiveOrder(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "no active order")}
	handler := CartDecrement(svc, nil)

	itemID := uuid.New()
	req := authedRequest(http.MethodPost, "/api/v1/cart/update-quantity/"+itemID.String(), "")
	req = withURLParam(req, "itemId", itemID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartRemoveLineForeignLineHidden(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")}
	handler := CartRemoveLine(svc, nil)

	lineID := uuid.New()
	req := authedRequest(http.MethodDelete, "/api/v1/cart/order-items/"+lineID.String(), "")
	req = withURLParam(req, "orderItemId", lineID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCartRemoveLinePassesID(t *testing.T) {
	svc := &stubCartService{}
	handler := CartRemoveLine(svc, nil)

	lineID := uuid.New()
	req := authedRequest(http.MethodDelete, "/api/v1/cart/order-items/"+lineID.String(), "")
	req = withURLParam(req, "orderItemId", lineID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.removedLine != lineID {
		t.Fatalf("expected service to receive line %s got %s", lineID, svc.removedLine)
	}
}
