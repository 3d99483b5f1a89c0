package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Vehicle and Driver carry the fields the simulator reads back from the API.
type Vehicle struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registration_number"`
	Status             string `json:"status"`
}

type Driver struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type Tripsheet struct {
	ID        string `json:"id"`
	VehicleID string `json:"vehicle_id"`
	DriverID  string `json:"driver_id"`
	Status    string `json:"status"`
}

// DayEntry is the body of PUT /tripsheets/{id}/entries/{date}.
type DayEntry struct {
	Status       string   `json:"status"`
	StartingKm   *int     `json:"starting_km,omitempty"`
	ClosingKm    *int     `json:"closing_km,omitempty"`
	StartingTime string   `json:"starting_time,omitempty"`
	ClosingTime  string   `json:"closing_time,omitempty"`
	FuelLitres   *float64 `json:"fuel_litres,omitempty"`
	FuelAmount   *float64 `json:"fuel_amount,omitempty"`
	Remarks      string   `json:"remarks,omitempty"`
}

const fuelPricePerLitre = 102.5

var errConflict = errors.New("already exists")

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

// do sends body as JSON and decodes a 2xx response into out. A 409 is
// reported as errConflict.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s body: %w", path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("%s %s: %w", method, path, errConflict)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *apiClient) login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password}, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// openTripsheet creates the month's tripsheet, or returns the existing one.
func (c *apiClient) openTripsheet(ctx context.Context, vehicleID, driverID string, month, year int) (*Tripsheet, error) {
	var ts Tripsheet
	err := c.do(ctx, http.MethodPost, "/tripsheets", map[string]any{
		"vehicle_id": vehicleID,
		"driver_id":  driverID,
		"month":      month,
		"year":       year,
	}, &ts)
	if err == nil {
		return &ts, nil
	}
	if !errors.Is(err, errConflict) {
		return nil, err
	}

	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))
	q.Set("vehicle_id", vehicleID)
	var existing []Tripsheet
	if err := c.do(ctx, http.MethodGet, "/tripsheets?"+q.Encode(), nil, &existing); err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.DriverID == driverID {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("tripsheet for vehicle %s in %02d/%d exists but is not visible", vehicleID, month, year)
}

// randomDay builds a plausible entry. odometer is advanced on working days.
func randomDay(rng *rand.Rand, odometer *int) DayEntry {
	if rng.Float64() < 0.15 {
		return DayEntry{Status: "off"}
	}

	start := *odometer
	*odometer += 40 + rng.Intn(160) // 40-199 km
	end := *odometer

	// Start between 06:00 and 08:59, work 8 to 14 hours.
	startMin := 6*60 + rng.Intn(180)
	hours := 8*60 + rng.Intn(6*60)
	closeMin := min(startMin+hours, 23*60+59)

	day := DayEntry{
		Status:       "working",
		StartingKm:   &start,
		ClosingKm:    &end,
		StartingTime: clock(startMin),
		ClosingTime:  clock(closeMin),
	}
	if rng.Intn(4) == 0 {
		litres := float64(20 + rng.Intn(30))
		amount := litres * fuelPricePerLitre
		day.FuelLitres = &litres
		day.FuelAmount = &amount
	}
	return day
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// simulateMonth fills every day of the month for one vehicle and driver and
// optionally submits the tripsheet.
func simulateMonth(ctx context.Context, c *apiClient, rng *rand.Rand, v Vehicle, d Driver, month, year int, submit bool) error {
	ts, err := c.openTripsheet(ctx, v.ID, d.ID, month, year)
	if err != nil {
		return err
	}
	if ts.Status != "" && ts.Status != "draft" {
		log.WithFields(log.Fields{"tripsheet_id": ts.ID, "status": ts.Status}).Info("Tripsheet already submitted, skipping")
		return nil
	}

	odometer := 10000 + rng.Intn(90000)
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		entry := randomDay(rng, &odometer)
		path := fmt.Sprintf("/tripsheets/%s/entries/%s", ts.ID, day.Format(time.DateOnly))
		if err := c.do(ctx, http.MethodPut, path, entry, nil); err != nil {
			return err
		}
	}

	fields := log.Fields{"tripsheet_id": ts.ID, "vehicle": v.RegistrationNumber, "driver": d.Name}
	if !submit {
		log.WithFields(fields).Info("Filled tripsheet")
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/tripsheets/"+ts.ID+"/submit", nil, nil); err != nil {
		return err
	}
	log.WithFields(fields).Info("Filled and submitted tripsheet")
	return nil
}

// pairFleet matches active vehicles to active drivers in list order.
func pairFleet(vehicles []Vehicle, drivers []Driver, limit int) ([]Vehicle, []Driver) {
	var vs []Vehicle
	var ds []Driver
	for _, v := range vehicles {
		if v.Status == "active" {
			vs = append(vs, v)
		}
	}
	for _, d := range drivers {
		if d.Status == "active" {
			ds = append(ds, d)
		}
	}
	n := min(len(vs), len(ds))
	if limit > 0 {
		n = min(n, limit)
	}
	return vs[:n], ds[:n]
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	now := time.Now()
	month := envInt("SIM_MONTH", int(now.Month()))
	year := envInt("SIM_YEAR", now.Year())
	fleetSize := envInt("FLEET_SIZE", 10)
	submit, _ := strconv.ParseBool(os.Getenv("SIM_SUBMIT"))

	log.WithFields(log.Fields{
		"api_url":    apiURL,
		"fleet_size": fleetSize,
		"month":      month,
		"year":       year,
		"submit":     submit,
	}).Info("Starting tripsheet simulation")

	ctx := context.Background()
	client := newAPIClient(apiURL)
	if err := client.login(ctx, os.Getenv("SIM_USERNAME"), os.Getenv("SIM_PASSWORD")); err != nil {
		log.WithError(err).Fatal("Login failed. Set SIM_USERNAME and SIM_PASSWORD to a manager account.")
	}

	var vehicles []Vehicle
	var drivers []Driver
	if err := client.do(ctx, http.MethodGet, "/vehicles", nil, &vehicles); err != nil {
		log.WithError(err).Fatal("Failed to list vehicles")
	}
	if err := client.do(ctx, http.MethodGet, "/drivers", nil, &drivers); err != nil {
		log.WithError(err).Fatal("Failed to list drivers")
	}
	vs, ds := pairFleet(vehicles, drivers, fleetSize)
	if len(vs) == 0 {
		log.Error("No active vehicle and driver pairs found. Exiting.")
		return
	}

	var wg sync.WaitGroup
	for i := range vs {
		wg.Add(1)
		go func(v Vehicle, d Driver, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			if err := simulateMonth(ctx, client, rng, v, d, month, year, submit); err != nil {
				log.WithError(err).WithField("vehicle", v.RegistrationNumber).Error("Simulation failed")
			}
		}(vs[i], ds[i], now.UnixNano()+int64(i))
	}
	wg.Wait()
	log.WithField("tripsheets", len(vs)).Info("Simulation completed")
}
