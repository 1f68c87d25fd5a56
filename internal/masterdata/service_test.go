package masterdata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func TestCreateNormalisesAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	c, err := f.MasterData.CreateCustomer(ctx, masterdata.PartyInput{Code: " globex ", Name: " Globex Corp "})
	require.NoError(t, err)
	require.Equal(t, "GLOBEX", c.Code)
	require.Equal(t, "Globex Corp", c.Name)

	got, err := f.MasterData.GetCustomerByCode(ctx, "globex")
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	_, err = f.MasterData.CreateCustomer(ctx, masterdata.PartyInput{Code: "ACME", Name: "Another Acme"})
	require.ErrorIs(t, err, shared.ErrDuplicateKey)

	_, err = f.MasterData.GetSupplierByCode(ctx, "NOBODY")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateItemValidation(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	cases := map[string]masterdata.ItemInput{
		"missing code":   {Name: "Thing"},
		"missing name":   {Code: "THING"},
		"negative price": {Code: "THING", Name: "Thing", SalesPrice: decimal.NewFromInt(-1)},
		"vat above 100":  {Code: "THING", Name: "Thing", VATRate: decimal.NewFromInt(101)},
		"negative level": {Code: "THING", Name: "Thing", ReorderLevel: decimal.NewFromInt(-2)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.MasterData.CreateItem(ctx, in)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	item, err := f.MasterData.CreateItem(ctx, masterdata.ItemInput{Code: "bolt", Name: "Bolt", SalesPrice: bookstest.D("0.125")})
	require.NoError(t, err)
	require.Equal(t, "EA", item.UnitOfMeasure)
	require.True(t, item.SalesPrice.Equal(bookstest.D("0.13")))
}

func TestEnsureLocationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	again, err := f.MasterData.EnsureLocation(ctx, "main", "ignored")
	require.NoError(t, err)
	require.Equal(t, f.DefaultLocation.ID, again.ID)

	locs, err := f.MasterData.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 1)
}

func TestResolveLinesFallsBackToItemPrices(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	price := bookstest.D("45")
	reqs := []masterdata.LineRequest{
		{Item: "widget", Quantity: bookstest.D("2")},
		{Item: "WIDGET", Location: "MAIN", Quantity: bookstest.D("1"), UnitPrice: &price},
		{Description: "Delivery", Quantity: bookstest.D("1"), UnitPrice: &price},
	}

	sales, err := masterdata.ResolveLines(ctx, f.MasterData, reqs, false)
	require.NoError(t, err)
	require.Len(t, sales, 3)
	require.Equal(t, f.Widget.ID, *sales[0].ItemID)
	require.True(t, sales[0].UnitPrice.Equal(bookstest.D("50")))
	require.True(t, sales[0].VATRate.Equal(bookstest.D("20")))
	require.True(t, sales[1].UnitPrice.Equal(price))
	require.Equal(t, f.DefaultLocation.ID, *sales[1].LocationID)
	require.Nil(t, sales[2].ItemID)
	require.True(t, sales[2].VATRate.IsZero())

	purchases, err := masterdata.ResolveLines(ctx, f.MasterData, reqs[:1], true)
	require.NoError(t, err)
	require.True(t, purchases[0].UnitPrice.Equal(bookstest.D("30")))

	_, err = masterdata.ResolveLines(ctx, f.MasterData, []masterdata.LineRequest{{Item: "NOPE", Quantity: bookstest.D("1")}}, false)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHandlerCreatesItems(t *testing.T) {
	f := bookstest.New(t)
	r := chi.NewRouter()
	r.Route("/masterdata", masterdata.NewHandler(nil, f.MasterData).MountRoutes)
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/masterdata/items/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := post(`{"code":"gadget","name":"Gadget","sales_price":"120","vat_rate":"20","track_stock":true}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"code":"GADGET"`)

	rr = post(`{"code":"gadget","name":"Gadget again"}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = post(`{"code":"thing"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/masterdata/items/GADGET", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
