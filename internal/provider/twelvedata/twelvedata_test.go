package twelvedata_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"quotegateway/internal/httpx"
	"quotegateway/internal/httpx/httpxmock"
	"quotegateway/internal/provider"
	"quotegateway/internal/provider/twelvedata"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	p := twelvedata.New(twelvedata.Config{ChunkSize: 50}, nil)
	require.Equal(t, "twelvedata", p.Name())
	require.Equal(t, twelvedata.DefaultPacing, p.Pacing())
	require.ErrorIs(t, p.CheckCredential(), provider.ErrMissingCredential)

	tickers := make([]string, 20)
	for i := range tickers {
		tickers[i] = string(rune('A' + i))
	}
	units := p.Units(tickers)
	require.Len(t, units, 3)
	require.Len(t, units[0], 8)
	require.Len(t, units[1], 8)
	require.Len(t, units[2], 4)

	require.Zero(t, twelvedata.New(twelvedata.Config{Pacing: -1}, nil).Pacing())
	require.Len(t, twelvedata.New(twelvedata.Config{}, nil).Units([]string{"CL=F", "NG=F"}), 2)
}

func TestFetchUnit_SingleCommodity(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/quote", req.URL.Path)
			require.Equal(t, "CL", req.URL.Query().Get("symbol"))
			require.Equal(t, "k", req.URL.Query().Get("apikey"))
			return jsonResponse(http.StatusOK, `{"symbol":"CL","name":"Crude Oil WTI","close":"78.50","previous_close":"77.00","change":"1.50","percent_change":"1.94805"}`), nil
		}).
		Times(1)
	p := twelvedata.New(twelvedata.Config{APIKey: "k", SymbolMap: twelvedata.CommoditySymbols}, httpClient)

	// Act
	results, err := p.FetchUnit(t.Context(), []string{"CL=F"})

	// Assert: caller keeps its own symbol form
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "CL=F", results[0].Original)
	require.Equal(t, "CL", results[0].Record.Symbol)
	require.Equal(t, "78.50", string(results[0].Record.Price))
	require.Equal(t, "77.00", string(results[0].Record.PreviousClose))
	require.False(t, results[0].Record.Rich)
}

func TestFetchUnit_SingleSymbolError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"code":404,"message":"symbol not found","status":"error"}`), nil).
		Times(1)
	p := twelvedata.New(twelvedata.Config{APIKey: "k"}, httpClient)

	results, err := p.FetchUnit(t.Context(), []string{"ZZZZ"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, provider.ErrSymbolUnavailable)
	require.ErrorContains(t, results[0].Err, "symbol not found")
}

func TestFetchUnit_KeyedChunk(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "MSFT,AAPL,BAD", req.URL.Query().Get("symbol"))
			return jsonResponse(http.StatusOK, `{
  "MSFT": {"symbol":"MSFT","name":"Microsoft Corp","close":"410.0","previous_close":"400.0"},
  "BAD":  {"code":400,"message":"**symbol** not found","status":"error"},
  "AAPL": {"symbol":"AAPL","name":"Apple Inc","close":"190","previous_close":"200"}
}`), nil
		}).
		Times(1)
	p := twelvedata.New(twelvedata.Config{APIKey: "k", ChunkSize: 8}, httpClient)

	// Act
	results, err := p.FetchUnit(t.Context(), []string{"MSFT", "AAPL", "BAD"})

	// Assert: document order is kept and the flagged symbol is a skip
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "MSFT", results[0].Original)
	require.NoError(t, results[0].Err)
	require.Equal(t, "BAD", results[1].Original)
	require.ErrorIs(t, results[1].Err, provider.ErrSymbolUnavailable)
	require.Equal(t, "AAPL", results[2].Original)
	require.Equal(t, "Apple Inc", results[2].Record.LongName)
}

func TestFetchUnit_OmittedSymbol(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"AAPL":{"symbol":"AAPL","close":"1"}}`), nil).
		Times(1)
	p := twelvedata.New(twelvedata.Config{APIKey: "k", ChunkSize: 8}, httpClient)

	results, err := p.FetchUnit(t.Context(), []string{"AAPL", "GONE"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "GONE", results[1].Original)
	require.ErrorIs(t, results[1].Err, provider.ErrSymbolUnavailable)
}

func TestFetchUnit_AccountErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		symbols []string
		status  int
		body    string
	}{
		{name: "rate limited single", symbols: []string{"AAPL"}, status: http.StatusOK, body: `{"code":429,"message":"run out of API credits","status":"error"}`},
		{name: "bad key chunk", symbols: []string{"AAPL", "MSFT"}, status: http.StatusOK, body: `{"code":401,"message":"apikey is incorrect","status":"error"}`},
		{name: "http status", symbols: []string{"AAPL"}, status: http.StatusServiceUnavailable, body: `down`},
		{name: "undecodable", symbols: []string{"AAPL", "MSFT"}, status: http.StatusOK, body: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockDoer(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(jsonResponse(tt.status, tt.body), nil).Times(1)
			p := twelvedata.New(twelvedata.Config{APIKey: "k", ChunkSize: 8, Pacing: time.Millisecond}, httpClient)

			results, err := p.FetchUnit(t.Context(), tt.symbols)
			require.ErrorIs(t, err, provider.ErrUpstreamTransport)
			require.Nil(t, results)
		})
	}
}

func TestFetchUnit_ChunkLevelSymbolError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"code":400,"message":"invalid symbols","status":"error"}`), nil).
		Times(1)
	p := twelvedata.New(twelvedata.Config{APIKey: "k", ChunkSize: 8}, httpClient)

	results, err := p.FetchUnit(t.Context(), []string{"X1", "X2"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.ErrorIs(t, r.Err, provider.ErrSymbolUnavailable)
	}
}

func TestFetchUnit_NetworkErrorHidesKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	p := twelvedata.New(twelvedata.Config{URL: base, APIKey: "SECRET-KEY-123", SymbolMap: twelvedata.CommoditySymbols}, httpx.New(2*time.Second))

	results, err := p.FetchUnit(t.Context(), []string{"CL=F"})

	require.ErrorIs(t, err, provider.ErrUpstreamTransport)
	require.Nil(t, results)
	require.NotContains(t, err.Error(), "SECRET-KEY-123")
	var ue *url.Error
	require.ErrorAs(t, err, &ue)
	require.Equal(t, base+"/quote", ue.URL)
}
