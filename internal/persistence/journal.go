package persistence

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"
	"time"

	"github.com/lukmusial/tradecore/internal/domain"
)

// FileTradeJournal is a durable, append-only TradeJournal backed by a
// gob-encoded file with a CRC32 checksum per record, adapted from the
// append-only event log pattern (sequence numbers, buffered writer,
// optional fsync per write) generalized from order lifecycle events to
// Trade records.
type FileTradeJournal struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	encoder  *gob.Encoder
	path     string
	syncMode bool
}

type tradeRecord struct {
	Trade    domain.Trade
	Checksum uint32
}

// NewFileTradeJournal opens (or creates) the journal at path.
func NewFileTradeJournal(path string, syncMode bool) (*FileTradeJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trade journal: %w", err)
	}
	w := bufio.NewWriter(f)
	return &FileTradeJournal{
		file:     f,
		writer:   w,
		encoder:  gob.NewEncoder(w),
		path:     path,
		syncMode: syncMode,
	}, nil
}

func checksumOf(t domain.Trade) uint32 {
	return crc32.ChecksumIEEE([]byte(fmt.Sprintf("%v", t)))
}

// Record appends trade to the journal.
func (j *FileTradeJournal) Record(trade domain.Trade) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	rec := tradeRecord{Trade: trade, Checksum: checksumOf(trade)}
	if err := j.encoder.Encode(rec); err != nil {
		return fmt.Errorf("encode trade record: %w", err)
	}
	if err := j.writer.Flush(); err != nil {
		return fmt.Errorf("flush trade journal: %w", err)
	}
	if j.syncMode {
		if err := j.file.Sync(); err != nil {
			return fmt.Errorf("sync trade journal: %w", err)
		}
	}
	return nil
}

// ReadByDate reads every trade recorded on day (UTC calendar date).
func (j *FileTradeJournal) ReadByDate(day time.Time) ([]domain.Trade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open trade journal for read: %w", err)
	}
	defer f.Close()

	year, month, d := day.Date()
	dec := gob.NewDecoder(f)
	var out []domain.Trade
	for {
		var rec tradeRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode trade record: %w", err)
		}
		if rec.Checksum != checksumOf(rec.Trade) {
			return nil, fmt.Errorf("checksum mismatch for trade %d", rec.Trade.ClientOrderID)
		}
		ts := time.Unix(0, rec.Trade.ExecutedAt).UTC()
		ty, tm, td := ts.Date()
		if ty == year && tm == month && td == d {
			out = append(out, rec.Trade)
		}
	}
	return out, nil
}

// Flush forces any buffered writes out.
func (j *FileTradeJournal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writer.Flush()
}

// Close flushes and closes the underlying file.
func (j *FileTradeJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		return err
	}
	return j.file.Close()
}
