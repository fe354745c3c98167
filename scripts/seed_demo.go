// seed_demo.go — standalone script to seed a demo agenda via the Concord API.
//
// Usage:
//
//	go run scripts/seed_demo.go -api http://localhost:8700 -actor op-1
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type criterionSeed struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Polarity string `json:"polarity"`
}

type alternativeSeed struct {
	Code   string
	Name   string
	Scores map[string]float64
}

var criteria = []criterionSeed{
	{Code: "CAP", Name: "Capacity", Polarity: "Benefit"},
	{Code: "LOC", Name: "Location rating", Polarity: "Benefit"},
	{Code: "RENT", Name: "Monthly rent", Polarity: "Cost"},
	{Code: "FIT", Name: "Fit-out cost", Polarity: "Cost"},
}

var alternatives = []alternativeSeed{
	{Code: "HQ-N", Name: "North tower", Scores: map[string]float64{"CAP": 420, "LOC": 8.5, "RENT": 61000, "FIT": 180000}},
	{Code: "HQ-S", Name: "South plaza", Scores: map[string]float64{"CAP": 380, "LOC": 9.1, "RENT": 72000, "FIT": 95000}},
	{Code: "HQ-W", Name: "West campus", Scores: map[string]float64{"CAP": 510, "LOC": 6.8, "RENT": 48000, "FIT": 240000}},
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "Concord API base URL")
	actor := flag.String("actor", "seed-operator", "actor id for the seeded data")
	flag.Parse()

	agendaID := post(*apiURL, *actor, "/api/v1/agendas", map[string]string{"topic": "Headquarters relocation"})
	log.Printf("created agenda %s", agendaID)

	for _, c := range criteria {
		post(*apiURL, *actor, "/api/v1/agendas/"+agendaID+"/criteria", c)
		log.Printf("created criterion %s", c.Code)
	}

	for _, a := range alternatives {
		altID := post(*apiURL, *actor, "/api/v1/agendas/"+agendaID+"/alternatives", map[string]string{"code": a.Code, "name": a.Name})
		log.Printf("created alternative %s", a.Code)
		for code, value := range a.Scores {
			put(*apiURL, *actor, fmt.Sprintf("/api/v1/agendas/%s/alternatives/%s/scores/%s", agendaID, altID, code), map[string]float64{"value": value})
		}
	}

	post(*apiURL, *actor, "/api/v1/agendas/"+agendaID+"/weights/recompute", nil)
	post(*apiURL, *actor, "/api/v1/agendas/"+agendaID+"/ranking/recompute", nil)
	log.Printf("seeded and ranked agenda %s", agendaID)
}

func do(method, apiURL, actor, path string, body interface{}) string {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("encode %s: %v", path, err)
		}
	}
	req, err := http.NewRequest(method, apiURL+path, &buf)
	if err != nil {
		log.Fatalf("request %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", actor)
	req.Header.Set("X-User-Role", "operator")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: status %d", method, path, resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out.ID
}

func post(apiURL, actor, path string, body interface{}) string {
	return do("POST", apiURL, actor, path, body)
}

func put(apiURL, actor, path string, body interface{}) {
	do("PUT", apiURL, actor, path, body)
}
