//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneLength = 150 * time.Millisecond
)

type SoundManager struct {
	dir     string
	buffers map[string]*beep.Buffer
	enabled bool
	mu      sync.RWMutex
}

// NewSoundManager creates a manager that loads overrides from dir.
func NewSoundManager(dir string) *SoundManager {
	return &SoundManager{
		dir:     dir,
		buffers: make(map[string]*beep.Buffer),
	}
}

func (sm *SoundManager) Init() error {
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	if err := sm.loadSoundFiles(); err != nil {
		return err
	}

	// Sounds without a file fall back to a short beep
	for name, freq := range tones {
		if sm.has(name) {
			continue
		}
		buf, err := toneBuffer(freq)
		if err != nil {
			return err
		}
		sm.store(name, buf)
	}

	sm.mu.Lock()
	sm.enabled = true
	sm.mu.Unlock()
	return nil
}

// loadSoundFiles loads <name>.mp3 / <name>.wav files from the sound directory
func (sm *SoundManager) loadSoundFiles() error {
	if sm.dir == "" {
		return nil
	}
	files, err := os.ReadDir(sm.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}

		buf, err := decodeFile(filepath.Join(sm.dir, name), ext)
		if err != nil {
			// Continue loading other files even if one fails
			continue
		}
		sm.store(strings.TrimSuffix(name, filepath.Ext(name)), buf)
	}
	return nil
}

func decodeFile(path, ext string) (*beep.Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(standardFormat())
	buffer.Append(resampled)
	return buffer, nil
}

func toneBuffer(freq float64) (*beep.Buffer, error) {
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil, fmt.Errorf("tone %.0fHz: %w", freq, err)
	}
	buffer := beep.NewBuffer(standardFormat())
	buffer.Append(beep.Take(sampleRate.N(toneLength), tone))
	return buffer, nil
}

func standardFormat() beep.Format {
	return beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   2,
	}
}

func (sm *SoundManager) has(name string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.buffers[name]
	return ok
}

func (sm *SoundManager) store(name string, buf *beep.Buffer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.buffers[name] = buf
}

func (sm *SoundManager) Play(name string) {
	sm.mu.RLock()
	buffer, ok := sm.buffers[name]
	enabled := sm.enabled
	sm.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = false
}
