package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"stock-signal-bot/internal/logger"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func chartJSON(timestamps []int64, closes []string) string {
	ts := make([]string, len(timestamps))
	for i, v := range timestamps {
		ts[i] = fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), strings.Join(closes, ","))
}

func TestDailyCloses(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "AAPL") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("Expected 1d interval, got %q", r.URL.Query().Get("interval"))
		}
		fmt.Fprint(w, chartJSON([]int64{day1.Unix(), day2.Unix()}, []string{"185.5", "187.2"}))
	}))
	defer srv.Close()

	c := NewClient(30, 10)
	c.baseURL = srv.URL

	series, err := c.DailyCloses(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatal(err)
	}

	daily := series["AAPL"]
	if len(daily) != 2 {
		t.Fatalf("Expected 2 closes, got %d", len(daily))
	}
	if daily["2024-01-02"] != 185.5 || daily["2024-01-03"] != 187.2 {
		t.Errorf("Unexpected closes: %v", daily)
	}
}

func TestDailyClosesSkipsNullCloses(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON([]int64{day1.Unix(), day2.Unix()}, []string{"null", "187.2"}))
	}))
	defer srv.Close()

	c := NewClient(30, 10)
	c.baseURL = srv.URL

	series, err := c.DailyCloses(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatal(err)
	}

	daily := series["AAPL"]
	if len(daily) != 1 {
		t.Fatalf("Expected null close skipped, got %v", daily)
	}
	if daily["2024-01-03"] != 187.2 {
		t.Errorf("Unexpected closes: %v", daily)
	}
}

func TestDailyClosesOmitsFailedTickers(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "AAPL"):
			fmt.Fprint(w, chartJSON([]int64{day1.Unix(), day2.Unix()}, []string{"185.5", "187.2"}))
		case strings.Contains(r.URL.Path, "BAD"):
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(30, 10)
	c.baseURL = srv.URL

	series, err := c.DailyCloses(context.Background(), []string{"AAPL", "BAD", "WORSE"})
	if err != nil {
		t.Fatal(err)
	}

	if len(series) != 1 {
		t.Fatalf("Expected only the healthy ticker, got %v", series)
	}
	if _, ok := series["AAPL"]; !ok {
		t.Error("Expected AAPL in the series")
	}
}
