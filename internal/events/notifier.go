package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Event commit SONRASI yayınlanan bildirim (settlement, sandık açılışı).
// Ledger transaction'ı içinden asla publish edilmez; teslimat başarısız
// olsa bile ledger geri alınmaz.
type Event struct {
	Kind    string                 `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
}

// Sink bir event teslim hedefi (websocket fanout, push gateway vb.).
// Teslimat fire-and-forget'tir.
type Sink interface {
	Deliver(event Event) error
}

// Publisher event yayınlama arayüzü; servisler buna bağlıdır
type Publisher interface {
	Publish(event Event)
}

// Notifier buffer'lı worker havuzuyla event dağıtır.
// Publish hiçbir zaman bloklamaz ve hata döndürmez; buffer doluysa
// event düşürülür ve loglanır.
type Notifier struct {
	eventChan  chan Event
	workers    int
	bufferSize int
	sinks      []Sink
	wg         sync.WaitGroup
}

// NewNotifier yeni notifier oluşturur
func NewNotifier(workers, bufferSize int, sinks ...Sink) *Notifier {
	return &Notifier{
		eventChan:  make(chan Event, bufferSize),
		workers:    workers,
		bufferSize: bufferSize,
		sinks:      sinks,
	}
}

// Start worker'ları başlatır
func (n *Notifier) Start() {
	log.Info().
		Int("workers", n.workers).
		Int("buffer_size", n.bufferSize).
		Msg("🔔 Event notifier başlatıldı")

	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}
}

// Stop kanalı kapatır ve kalan event'lerin teslimini bekler
func (n *Notifier) Stop() {
	close(n.eventChan)
	n.wg.Wait()
	log.Info().Msg("⏹️ Event notifier durduruldu")
}

// Publish event'i kuyruğa atar; buffer doluysa düşürür.
// Çağıran commit'ten SONRA çağırmakla yükümlüdür.
func (n *Notifier) Publish(event Event) {
	select {
	case n.eventChan <- event:
	default:
		log.Warn().Str("kind", event.Kind).Msg("Event buffer dolu, event düşürüldü")
	}
}

// worker tek bir worker'ın event teslim döngüsü
func (n *Notifier) worker(id int) {
	defer n.wg.Done()

	// Panic recovery: bir sink'in panic'i havuzu düşürmez
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("recover", r).
				Int("worker_id", id).
				Msg("🚨 Notifier worker panikledi ama toparlandı")
		}
	}()

	for event := range n.eventChan {
		for _, sink := range n.sinks {
			if err := sink.Deliver(event); err != nil {
				// Fire-and-forget: hata loglanır, tekrar denenmez
				log.Warn().Err(err).Str("kind", event.Kind).Msg("Event teslim edilemedi")
			}
		}
	}
}

// LogSink event'leri sadece loglayan varsayılan sink (development)
type LogSink struct{}

// Deliver event'i loglar
func (LogSink) Deliver(event Event) error {
	log.Debug().Str("kind", event.Kind).Interface("payload", event.Payload).Msg("📨 Event")
	return nil
}
