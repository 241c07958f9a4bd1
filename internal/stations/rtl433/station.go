// Package rtl433 acquires outdoor readings from an rtl_433 radio receiver,
// either by spawning the rtl_433 process and scanning its JSON output or by
// reading the same line format from a serial bridge.
package rtl433

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	serial "github.com/tarm/goserial"
	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/stations"
	"github.com/rpelletier/meteopi/internal/types"
	"github.com/rpelletier/meteopi/pkg/config"
)

const (
	baseRetryDelay    = time.Second
	maxRetryDelay     = 30 * time.Second
	backoffResetAfter = time.Minute
)

// Station holds the receiver subprocess or serial connection along with
// the reading distributor
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	config             config.DeviceData
	ReadingDistributor chan<- types.Reading
	logger             *zap.SugaredLogger
}

// NewStation creates a new rtl_433 station instance
func NewStation(ctx context.Context, wg *sync.WaitGroup, deviceConfig config.DeviceData, distributor chan<- types.Reading, logger *zap.SugaredLogger) stations.Station {
	return &Station{
		ctx:                ctx,
		wg:                 wg,
		config:             deviceConfig,
		ReadingDistributor: distributor,
		logger:             logger.Named("rtl433").With("station", deviceConfig.Name),
	}
}

// StationName returns the name of this station
func (s *Station) StationName() string {
	return s.config.Name
}

// StartStation launches the receiver loop
func (s *Station) StartStation() error {
	if s.config.Command == "" && s.config.SerialDevice == "" {
		return fmt.Errorf("station [%s] must define either a command or a serial device", s.config.Name)
	}

	log.Infof("Starting rtl_433 station [%v]...", s.config.Name)

	s.wg.Add(1)
	go s.receiveLoop()

	return nil
}

// receiveLoop keeps the receiver alive: it (re)acquires the line source,
// drains it, and retries with capped exponential backoff when it fails.
// A receiver exit never crashes the daemon.
func (s *Station) receiveLoop() {
	defer s.wg.Done()

	attempt := 0
	for {
		if s.ctx.Err() != nil {
			return
		}

		started := time.Now()
		err := s.receiveOnce()
		if s.ctx.Err() != nil {
			return
		}

		attempt = nextAttempt(attempt, time.Since(started))
		delay := retryDelay(attempt)
		if delay < maxRetryDelay {
			attempt++
		}
		s.logger.Errorw("receiver terminated, restarting",
			"error", err,
			"delay", delay)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// retryDelay returns the capped exponential backoff delay for the given
// restart attempt.
func retryDelay(attempt int) time.Duration {
	delay := baseRetryDelay << attempt
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// nextAttempt returns the attempt counter to use after a receiver run that
// lasted ran. A run long enough to count as healthy clears the counter, so a
// receiver that streamed for hours restarts promptly instead of waiting out
// a stale backoff cap.
func nextAttempt(attempt int, ran time.Duration) int {
	if ran >= backoffResetAfter {
		return 0
	}
	return attempt
}

// receiveOnce acquires the line source, scans it until it is exhausted or
// the context ends, and releases it.
func (s *Station) receiveOnce() error {
	if s.config.SerialDevice != "" {
		return s.receiveFromSerial()
	}
	return s.receiveFromCommand()
}

func (s *Station) receiveFromCommand() error {
	cmd := exec.CommandContext(s.ctx, s.config.Command, s.config.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("could not open stdout pipe: %w", err)
	}

	s.logger.Debugf("spawning receiver process %s", s.config.Command)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("could not start %s: %w", s.config.Command, err)
	}

	scanErr := s.scanLines(stdout)
	waitErr := cmd.Wait()
	if scanErr != nil {
		return scanErr
	}
	if waitErr != nil {
		return fmt.Errorf("%s exited: %w", s.config.Command, waitErr)
	}
	return fmt.Errorf("%s closed its output", s.config.Command)
}

func (s *Station) receiveFromSerial() error {
	baud := s.config.Baud
	if baud == 0 {
		baud = 9600
	}

	sc := &serial.Config{Name: s.config.SerialDevice, Baud: baud}
	s.logger.Debugf("opening serial port %s at %d baud", s.config.SerialDevice, baud)
	port, err := serial.OpenPort(sc)
	if err != nil {
		return fmt.Errorf("could not open serial port %s: %w", s.config.SerialDevice, err)
	}
	defer port.Close()

	if err := s.scanLines(port); err != nil {
		return err
	}
	return fmt.Errorf("serial port %s closed", s.config.SerialDevice)
}

func (s *Station) scanLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.ctx.Err() != nil {
			return nil
		}

		reading, ok := parseLine(scanner.Bytes(), time.Now())
		if !ok {
			continue
		}

		select {
		case s.ReadingDistributor <- reading:
		case <-s.ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}
