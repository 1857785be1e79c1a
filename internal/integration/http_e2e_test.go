//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"ivy_homes/internal/adapters/filesource"
	server "ivy_homes/internal/adapters/http_server"
	"ivy_homes/internal/app"
	mysqlrepo "ivy_homes/internal/storage/mysql"
)

const inventoryJSON = `{"properties":[
  {"id":"blr-001","type":"apartment","city":"Bengaluru","neighborhood":"Whitefield","address":"12 ITPL Main Road",
   "price":8500000,"bedrooms":2,"bathrooms":2,"features":["parking","gym"],"status":"available"},
  {"id":"blr-002","type":"house","city":"Bengaluru","neighborhood":"Indiranagar","address":"4 HAL 2nd Stage",
   "price":32000000,"bedrooms":4,"bathrooms":3,"features":["garden"],"status":"available"},
  {"id":"pun-001","type":"apartment","city":"Pune","neighborhood":"Baner","address":"7 Baner Road",
   "price":6000000,"bedrooms":2,"bathrooms":1,"status":"sold"}
]}`

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=ivy"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/ivy?parseTime=true&charset=utf8mb4&loc=UTC", resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---------- the test ----------
func TestHTTP_EndToEnd_SeededMySQL(t *testing.T) {
	ctx := context.Background()
	db := startMySQL(t)
	if err := mysqlrepo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "properties.json")
	if err := os.WriteFile(path, []byte(inventoryJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	// seed the database from the file, then serve from the database
	repo := mysqlrepo.New(db)
	rep, err := app.NewSeedService(filesource.New(path), repo, nil, 4).Seed(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if rep.Upserted != 3 || rep.Failed != 0 {
		t.Fatalf("unexpected seed report: %+v", rep)
	}

	svc, err := app.LoadSearchService(ctx, repo)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{S: svc, MaxResults: 5})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/properties?location=bengaluru&feature=garden")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var list struct {
		Count int `json:"count"`
		Items []struct {
			ID       string   `json:"id"`
			Features []string `json:"features"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Items[0].ID != "blr-002" {
		t.Fatalf("unexpected list: %+v", list)
	}

	res2, err := http.Post(ts.URL+"/v1/agent/search", "application/json",
		strings.NewReader(`{"location":"bengaluru","max_price":40000000}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res2.Body.Close()
	var reply struct {
		Speech string `json:"speech"`
		Count  int    `json:"count"`
	}
	if err := json.NewDecoder(res2.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Count != 2 || !strings.HasPrefix(reply.Speech, "I found 2 properties.") ||
		!strings.Contains(reply.Speech, "3.2 crore rupees") {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}
