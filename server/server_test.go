package server_test

import (
	"encoding/json"
	"go/types"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/osel/golightfield/server"

	"goji.io/pat"
)

type stub struct {
	rt server.RouteTable
}

func (s stub) RT() server.RouteTable { return s.rt }

func TestMuxServesRoutesAndRouteList(t *testing.T) {
	h := stub{rt: server.RouteTable{
		pat.Get("/ping"): func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	}}
	srv := httptest.NewServer(server.Mux(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /ping, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/route-list")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	routes := []string{}
	err = json.NewDecoder(resp.Body).Decode(&routes)
	if err != nil {
		t.Fatal(err)
	}
	if len(routes) != 2 {
		t.Errorf("expected 2 routes listed, got %v", routes)
	}
}

func TestHumanPayloadEnvelopes(t *testing.T) {
	cases := []struct {
		hp   server.HumanPayload
		want string
	}{
		{server.HumanPayload{T: types.Float64, Float: 1.5}, `{"f64":1.5}`},
		{server.HumanPayload{T: types.Int, Int: 3}, `{"int":3}`},
		{server.HumanPayload{T: types.String, String: "hi"}, `{"str":"hi"}`},
		{server.HumanPayload{T: types.Bool, Bool: true}, `{"bool":true}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		tc.hp.EncodeAndRespond(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		got := rec.Body.String()
		if got != tc.want+"\n" {
			t.Errorf("expected %s, got %s", tc.want, got)
		}
	}
}
