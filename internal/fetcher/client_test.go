package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestClient(url string) *Client {
	return NewClient(Options{BaseURL: url + "/", Timeout: time.Second, UserAgent: "test"}, noopLogger())
}

func TestFetchMarketSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/market" {
			t.Fatalf("请求路径应为 /api/market, 实际 %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Fatalf("Accept 头不正确: %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "test" {
			t.Fatalf("User-Agent 头不正确: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"pair":{"primary":"Xbt","secondary":"Aud"},"price":{"last":"153263.48"}}]`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).FetchMarket(context.Background())
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}
	if len(items) != 1 || items[0].Pair != "XBT-AUD" {
		t.Fatalf("解析结果不正确: %#v", items)
	}
	if items[0].PriceLast == nil || *items[0].PriceLast != 153263.48 {
		t.Fatalf("priceLast 不正确: %v", items[0].PriceLast)
	}
}

func TestFetchCurrenciesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/currency" {
			t.Fatalf("请求路径应为 /api/currency, 实际 %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"code":"Aud","icon":"PHN2Zz4="},{"code":"","ticker":"xbt"}]`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchCurrencies(context.Background())
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}
	if len(got) != 2 || got[0].Code != "AUD" || got[1].Code != "XBT" {
		t.Fatalf("解析结果不正确: %#v", got)
	}
	if got[0].IconDataURL != "data:image/svg+xml;base64,PHN2Zz4=" {
		t.Fatalf("icon data url 不正确: %s", got[0].IconDataURL)
	}
}

func TestFetchMarketHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchMarket(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("HTTP 503 应返回 APIError, 实际 %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("状态码不正确: %d", apiErr.StatusCode)
	}
	if apiErr.Error() != "HTTP 503 Service Unavailable" {
		t.Fatalf("错误信息不正确: %s", apiErr.Error())
	}
}

func TestFetchMarketSchemaMismatchIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	items, err := client.FetchMarket(context.Background())
	if err != nil {
		t.Fatalf("schema 不匹配不应报错: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("应返回空数组, 实际 %#v", items)
	}

	currencies, err := client.FetchCurrencies(context.Background())
	if err != nil || len(currencies) != 0 {
		t.Fatalf("currency schema 不匹配应返回空数组: %v %#v", err, currencies)
	}
}

func TestFetchMarketEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).FetchMarket(context.Background())
	if err != nil {
		t.Fatalf("空响应体不应报错: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("空响应体应视为空数组")
	}
}

func TestFetchMarketInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchMarket(context.Background()); err == nil {
		t.Fatal("非 JSON 响应应报错")
	}
}

func TestFetchMarketCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := newTestClient(srv.URL).FetchMarket(ctx)
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !IsCanceled(err) {
			t.Fatalf("取消后应返回 context.Canceled, 实际 %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("取消后请求应立即返回")
	}
}

func TestResolveBaseURL(t *testing.T) {
	if got := ResolveBaseURL(ModeProduction, "https://api.example.com///", "http://localhost:5173"); got != "https://api.example.com" {
		t.Fatalf("生产模式应去掉结尾斜杠, 实际 %s", got)
	}
	if got := ResolveBaseURL(ModeDevelopment, "https://api.example.com", "http://localhost:5173/"); got != "http://localhost:5173" {
		t.Fatalf("开发模式应使用本地代理, 实际 %s", got)
	}
}
