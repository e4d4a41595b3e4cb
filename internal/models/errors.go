package models

import "errors"

// Ledger operasyonlarının tipli hata setidir.
// Handler katmanı errors.Is ile HTTP status koduna çevirir,
// service katmanı fmt.Errorf("...: %w", err) ile context ekler.
var (
	// ErrInvalidAmount miktar pozitif tamsayı değilse döner (lock alınmadan önce)
	ErrInvalidAmount = errors.New("geçersiz miktar: pozitif tamsayı olmalı")

	// ErrInvalidWeight weight basis point 0-10000 aralığında değilse döner
	ErrInvalidWeight = errors.New("geçersiz weight: 0-10000 basis point aralığında olmalı")

	// ErrUserNotFound kullanıcı satırı bulunamaz/kilitlenemezse döner
	ErrUserNotFound = errors.New("kullanıcı bulunamadı")

	// ErrStreamerNotFound yayıncı bulunamazsa döner
	ErrStreamerNotFound = errors.New("yayıncı bulunamadı")

	// ErrInsufficientBalance lot'lardaki toplam kalan, istenen harcamayı karşılamıyorsa döner.
	// Tüketim planı hesaplandıktan sonra, hiçbir mutasyon uygulanmadan tespit edilir.
	ErrInsufficientBalance = errors.New("yetersiz bakiye")

	// ErrInsufficientValue yayıncının cüzdanındaki kullanılabilir değer
	// cashout talebini karşılamıyorsa döner (bakiye hatasından ayrı tutulur)
	ErrInsufficientValue = errors.New("yetersiz kullanılabilir değer")

	// ErrBeneficiaryRequired support harcamasında beneficiary verilmemişse döner
	ErrBeneficiaryRequired = errors.New("support harcaması için beneficiary gerekli")

	// ErrOpeningNotFound sandık açılışı bulunamazsa döner
	ErrOpeningNotFound = errors.New("sandık açılışı bulunamadı")

	// ErrOpeningAlreadyExists yayıncının zaten açık bir sandığı varsa döner
	ErrOpeningAlreadyExists = errors.New("yayıncının zaten açık bir sandığı var")

	// ErrOpeningClosed kapalı/iptal edilmiş açılışa katılım denenirse döner
	ErrOpeningClosed = errors.New("sandık açılışı kapalı")

	// ErrAlreadyClaimed aynı periyot için ikinci talepte döner
	ErrAlreadyClaimed = errors.New("ödül zaten talep edilmiş")

	// ErrMilestoneNotReached ay içi talep günü sayısı eşiğe ulaşmamışsa döner
	ErrMilestoneNotReached = errors.New("milestone eşiğine henüz ulaşılmadı")

	// ErrInvalidMilestone tanımsız milestone değeri için döner
	ErrInvalidMilestone = errors.New("geçersiz milestone: 5, 10, 20 veya 30 olmalı")
)
