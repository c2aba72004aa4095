/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	serial "github.com/allbin/go-serial-stress"
	"github.com/allbin/go-serial-stress/internal/tui/components"
	"github.com/allbin/go-serial-stress/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a stress test session against a serial device",
	Long: `Write the test pattern to a serial device, optionally configuring it for
raw data first and draining it with a detached reader.

The session runs in this order:
  1. raw configuration (--do-raw-config), then speed (--speed)
  2. open the device for writing
  3. start the detached reader on the same device (--fork-reader)
  4. write --send-count bytes of the pattern
  5. collect the reader's count and print a summary

Without --send-count only the configuration steps run.

Example usage:
  sst run --tty /dev/ttyUSB0 --do-raw-config
  sst run --tty /dev/ttyUSB0 --do-raw-config --fork-reader --send-count 921600
  sst run --tty /dev/ttyTHS0 --speed 3M --open-non-blocking --send-count 10000000 --tui
  sst run --tty capture.bin --create --send-count 19303`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessionFromConfig()
		if err != nil {
			return err
		}
		return s.run(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("tty", "t", "", "Device to test, e.g. /dev/ttyUSB0")
	runCmd.Flags().Uint64P("send-count", "n", 0, "Number of pattern bytes to write")
	runCmd.Flags().Bool("do-raw-config", false, "Configure the device for raw data before writing")
	runCmd.Flags().String("settings", "", "stty-style settings file for --do-raw-config (default: built-in raw script)")
	runCmd.Flags().String("speed", "", "Baud rate token to set before writing, e.g. 115200, 1M, 12.5M")
	runCmd.Flags().Bool("open-non-blocking", false, "Open the device non-blocking and count EAGAIN refusals")
	runCmd.Flags().Bool("fork-reader", false, "Drain the device with a detached reader and report its count")
	runCmd.Flags().Bool("create", false, "Create the target as a plain file if it does not exist")
	runCmd.Flags().Bool("tui", false, "Show live progress while writing")
	runCmd.Flags().Duration("handshake-timeout", 5*time.Second, "How long to wait for the reader to open the device")
	runCmd.Flags().Duration("read-timeout", 3*time.Second, "Reader's wait for data per poll")
	runCmd.Flags().Int("read-retries", 4, "Consecutive empty polls before the reader gives up")
}

// session is one run of the stress test
type session struct {
	Device           string
	SendCount        uint64
	RawConfig        bool
	SettingsFile     string
	Speed            string
	NonBlocking      bool
	ForkReader       bool
	Create           bool
	TUI              bool
	Debug            bool
	RawConfigDebug   bool
	LogFormat        string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	ReadRetries      int
}

func sessionFromConfig() (*session, error) {
	s := &session{
		Device:           viper.GetString("tty"),
		SendCount:        viper.GetUint64("send-count"),
		RawConfig:        viper.GetBool("do-raw-config"),
		SettingsFile:     viper.GetString("settings"),
		Speed:            viper.GetString("speed"),
		NonBlocking:      viper.GetBool("open-non-blocking"),
		ForkReader:       viper.GetBool("fork-reader"),
		Create:           viper.GetBool("create"),
		TUI:              viper.GetBool("tui"),
		Debug:            viper.GetBool("debug"),
		RawConfigDebug:   viper.GetBool("raw-config-debug"),
		LogFormat:        viper.GetString("log-format"),
		HandshakeTimeout: viper.GetDuration("handshake-timeout"),
		ReadTimeout:      viper.GetDuration("read-timeout"),
		ReadRetries:      viper.GetInt("read-retries"),
	}
	if s.Device == "" {
		return nil, fmt.Errorf("--tty is required: %w", serial.ErrInvalidArgument)
	}
	return s, nil
}

func (s *session) logger() *slog.Logger {
	return slog.Default().With("module", "sst", "device", s.Device)
}

func (s *session) run(out io.Writer) error {
	log := s.logger()

	info, err := serial.DescribeDevice(s.Device)
	if err != nil {
		return err
	}
	log.Debug("device", "description", info.Description, "exists", info.Exists, "terminal", info.IsTerminal)

	if err := s.configure(info); err != nil {
		return err
	}
	if s.SendCount == 0 {
		log.Debug("nothing to send")
		return nil
	}

	port, err := serial.OpenPort(s.Device, s.portOptions()...)
	if err != nil {
		return err
	}
	defer port.Close()

	var reader *serial.ReaderHandle
	if s.ForkReader {
		reader, err = serial.SpawnDetachedReader(s.Device, s.SendCount, s.readerOptions()...)
		if err != nil {
			return err
		}
		defer reader.Close()
		log.Debug("reader ready")
	}

	start := time.Now()
	var stats serial.WriteStats
	if s.TUI {
		stats, err = s.writeWithProgress(port, info)
	} else {
		stats, err = port.WritePattern(s.SendCount)
	}
	settle(port, err, log)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}
	log.Debug("wrote pattern", "sent", stats.Sent, "attempts", stats.Attempts, "eagain", stats.EAGAINs)

	summary := components.Summary{
		Device:   s.Device,
		Total:    s.SendCount,
		Sent:     stats.Sent,
		Attempts: stats.Attempts,
		EAGAINs:  stats.EAGAINs,
		Elapsed:  elapsed,
	}

	var readerErr error
	if reader != nil {
		st, err := serial.AwaitReaderResult(reader)
		if err != nil {
			return err
		}
		log.Debug("reader finished", "read", st.BytesRead, "status", st.Status, "errno", st.ErrorCode)

		readerErr = st.Err(s.Device)
		summary.Reader = true
		summary.BytesRead = st.BytesRead
		summary.ReadAttempts = st.ReadAttempts
		summary.ReaderOK = st.OK()
		summary.ReaderStatus = "ok"
		if readerErr != nil {
			summary.ReaderStatus = readerErr.Error()
		}
	}

	fmt.Fprintln(out, components.RenderSummary(summary))
	return readerErr
}

// configure applies raw settings and speed. A target that is not a
// terminal, such as a capture file, has nothing to configure.
func (s *session) configure(info *serial.DeviceInfo) error {
	if !s.RawConfig && s.Speed == "" {
		return nil
	}
	log := s.logger()
	if info.Exists && !info.IsTerminal {
		log.Warn("not a terminal, skipping configuration")
		return nil
	}

	if s.RawConfig {
		if err := applyRawConfig(s.Device, s.SettingsFile, s.RawConfigDebug); err != nil {
			return err
		}
	}
	if s.Speed != "" {
		if err := serial.ApplySpeed(s.Device, s.Speed,
			serial.WithLogger(slog.Default().With("module", "speed")),
			serial.WithDebug(s.Debug),
		); err != nil {
			return err
		}
		log.Info("speed set", "speed", s.Speed)
	}
	return nil
}

// outputQueue is the device's transmit queue
type outputQueue interface {
	Drain() error
	FlushOutput() error
}

// settle waits until written data has left the device, so the reader's
// deadline is not spent on bytes still queued at a low baud rate. After a
// failed write the queued data is dropped instead.
func settle(q outputQueue, writeErr error, log *slog.Logger) {
	if writeErr != nil {
		if err := q.FlushOutput(); err != nil {
			log.Warn("flushing output failed", "error", err)
		}
		return
	}
	if err := q.Drain(); err != nil {
		log.Warn("draining output failed", "error", err)
	}
}

func (s *session) portOptions() []serial.Option {
	opts := []serial.Option{
		serial.WithLogger(slog.Default().With("module", "writer")),
		serial.WithDebug(s.Debug),
	}
	if s.NonBlocking {
		opts = append(opts, serial.WithNonBlocking())
	}
	if s.Create {
		opts = append(opts, serial.WithCreate())
	}
	return opts
}

func (s *session) readerOptions() []serial.Option {
	opts := []serial.Option{
		serial.WithLogger(slog.Default().With("module", "reader")),
		serial.WithDebug(s.Debug),
		serial.WithHandshakeTimeout(s.HandshakeTimeout),
		serial.WithReadPollTimeout(s.ReadTimeout),
		serial.WithReadRetries(s.ReadRetries),
	}
	if s.LogFormat != "" {
		opts = append(opts, serial.WithLogFormat(s.LogFormat))
	}
	return opts
}

// progressInterval limits how often the live view is refreshed
const progressInterval = 50 * time.Millisecond

// writeWithProgress writes the pattern while a bubbletea program shows
// progress. Leaving the view does not stop the write.
func (s *session) writeWithProgress(port *serial.Port, info *serial.DeviceInfo) (serial.WriteStats, error) {
	model := models.NewSessionModel(components.SessionInfo{
		Device:      s.Device,
		Description: info.Description,
		Speed:       s.Speed,
		RawConfig:   s.RawConfig,
		NonBlocking: s.NonBlocking,
		Reader:      s.ForkReader,
		Total:       s.SendCount,
	})
	p := tea.NewProgram(model)

	var (
		stats serial.WriteStats
		err   error
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()

		var last time.Time
		stats, err = port.WritePattern(s.SendCount, serial.WithProgress(func(st serial.WriteStats) {
			if time.Since(last) < progressInterval {
				return
			}
			last = time.Now()
			p.Send(models.ProgressMsg(st))
		}))
		p.Send(models.DoneMsg{Stats: stats, Err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(models.SessionModel); ok && m.Detached() {
		fmt.Println(lipgloss.NewStyle().Faint(true).Render("view closed, waiting for the write to finish..."))
	}
	wg.Wait()

	if runErr != nil {
		s.logger().Warn("progress view failed", "error", runErr)
	}
	return stats, err
}
