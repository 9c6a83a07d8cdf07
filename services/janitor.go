package services

import (
	"math/rand"
	"time"

	"github.com/expendio/foh-app/utils"
)

// Janitor periodically returns one cleaning table to the floor. It runs
// concurrently with staff actions; the floor service's mutex keeps the two
// from racing on table status.
type Janitor struct {
	Floor    *FloorService
	Interval time.Duration
	Rand     *rand.Rand // seedable so tests can pin the selection
	StopChan chan struct{}
}

func NewJanitor(floor *FloorService) *Janitor {
	return &Janitor{
		Floor:    floor,
		Interval: 5 * time.Second,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		StopChan: make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	go func() {
		ticker := time.NewTicker(j.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Tick()
			case <-j.StopChan:
				return
			}
		}
	}()
}

func (j *Janitor) Stop() {
	close(j.StopChan)
}

// Tick frees at most one cleaning table, chosen uniformly at random.
func (j *Janitor) Tick() {
	table, err := j.Floor.FreeOneCleaningTable(j.Rand.Intn)
	if err != nil {
		utils.ErrorLogger.Printf("Janitor tick failed: %v", err)
		return
	}
	if table != nil {
		utils.InfoLogger.Printf("Table %s cleaned, back to available", table.Name)
	}
}
