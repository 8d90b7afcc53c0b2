package wiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeWiki serves the subset of the MediaWiki action API the fetcher uses:
// prop=extracts lookups against the articles map, list=search against the
// searches map (query -> best title).
func fakeWiki(t *testing.T, articles map[string]string, searches map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		if q.Get("list") == "search" {
			var results []map[string]string
			if title, ok := searches[q.Get("srsearch")]; ok {
				results = append(results, map[string]string{"title": title})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"query": map[string]interface{}{"search": results},
			})
			return
		}

		title := q.Get("titles")
		if extract, ok := articles[title]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"query": map[string]interface{}{
					"pages": map[string]interface{}{
						"42": map[string]interface{}{
							"pageid":  42,
							"title":   title,
							"extract": extract,
						},
					},
				},
			})
			return
		}
		missing := ""
		json.NewEncoder(w).Encode(map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"-1": map[string]interface{}{
						"title":   title,
						"missing": missing,
					},
				},
			},
		})
	}))
}

func TestFetcher_DirectTitleHit(t *testing.T) {
	srv := fakeWiki(t, map[string]string{
		"Alan Turing": "Alan Turing was an English mathematician.",
	}, nil)
	defer srv.Close()

	f := NewFetcher(srv.URL)
	text, sourceURL, err := f.Fetch(context.Background(), "Alan Turing")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "Alan Turing was an English mathematician." {
		t.Errorf("unexpected text: %q", text)
	}
	if want := srv.URL + "/wiki/Alan_Turing"; sourceURL != want {
		t.Errorf("sourceURL = %s, want %s", sourceURL, want)
	}
}

func TestFetcher_SearchFallback(t *testing.T) {
	srv := fakeWiki(t,
		map[string]string{"Quantum computing": "Quantum computing uses qubits."},
		map[string]string{"computers with qubits": "Quantum computing"},
	)
	defer srv.Close()

	f := NewFetcher(srv.URL)
	text, sourceURL, err := f.Fetch(context.Background(), "computers with qubits")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "Quantum computing uses qubits." {
		t.Errorf("unexpected text: %q", text)
	}
	if want := srv.URL + "/wiki/Quantum_computing"; sourceURL != want {
		t.Errorf("sourceURL = %s, want %s", sourceURL, want)
	}
}

func TestFetcher_NoMatch(t *testing.T) {
	srv := fakeWiki(t, nil, nil)
	defer srv.Close()

	f := NewFetcher(srv.URL)
	text, sourceURL, err := f.Fetch(context.Background(), "zxqwv nonsense")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "" || sourceURL != "" {
		t.Errorf("expected empty result for no match, got text=%q url=%q", text, sourceURL)
	}
}

func TestFetcher_EmptyQuery(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:1") // must not be contacted
	text, sourceURL, err := f.Fetch(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "" || sourceURL != "" {
		t.Error("expected empty result for blank query")
	}
}

func TestFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL)
	if _, _, err := f.Fetch(context.Background(), "anything"); err == nil {
		t.Error("expected error on upstream 500")
	}
}
