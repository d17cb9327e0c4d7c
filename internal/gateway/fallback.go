package gateway

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Canned replies, kept byte-identical with the legacy service so existing
// clients that match on them keep working.
const (
	GreetingReply  = "Привет! Я BOOOMERANGS AI ассистент. Чем могу помочь вам сегодня?"
	HowAreYouReply = "У меня всё отлично, спасибо что спросили! Как ваши дела?"
	IdentityReply  = "Да, я бот-ассистент BOOOMERANGS. Я использую различные AI модели для ответов на ваши вопросы без необходимости платных API ключей."
	CreationReply  = "Отлично! Опишите подробнее что вы хотите создать, и я сгенерирую для вас уникальное изображение! 🎨"
	BrandReply     = "BOOOMERANGS - это бесплатный мультимодальный AI-сервис для общения и создания изображений без необходимости платных API ключей."
)

var randomPool = []string{
	"BOOOMERANGS использует различные AI-провайдеры, чтобы предоставлять ответы даже без платных API ключей. Наша система автоматически выбирает лучший доступный провайдер в каждый момент времени.",
	"BOOOMERANGS позволяет не только общаться с AI, но и генерировать изображения по текстовому описанию, а также конвертировать их в векторный формат SVG.",
	"BOOOMERANGS стремится сделать технологии искусственного интеллекта доступными для всех. Наше приложение работает прямо в браузере и оптимизирован для использования на мобильных устройствах.",
}

// category pairs a keyword set with its reply. Categories are tested in
// order; the first match wins.
type category struct {
	keywords []string
	reply    string
}

var categories = []category{
	{[]string{"привет", "здравствуй", "hello", "hi"}, GreetingReply},
	{[]string{"как дела", "как ты", "how are you"}, HowAreYouReply},
	{[]string{"что такое", "расскажи о", "что ты", "о себе", "бот"}, IdentityReply},
	{[]string{"создай", "нарисуй", "сгенерируй", "изображен", "картин", "image", "picture"}, CreationReply},
	{[]string{"booomerangs", "буумеранг"}, BrandReply},
}

// Responder maps a message to a canned reply. It is invoked only after
// every provider attempt has failed; the text is cosmetic, not a
// contract.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder returns a time-seeded responder. Pool selection is
// intentionally non-deterministic across calls.
func NewResponder() *Responder {
	return NewSeededResponder(time.Now().UnixNano())
}

// NewSeededResponder fixes the random pool order; tests use it.
func NewSeededResponder(seed int64) *Responder {
	return &Responder{rng: rand.New(rand.NewSource(seed))}
}

// Reply lowercases the message, tests the keyword categories in priority
// order and returns the first matching canned string. With no match, one
// of a small fixed pool is chosen pseudo-randomly.
func (r *Responder) Reply(message string) string {
	lower := strings.ToLower(message)

	for _, cat := range categories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.reply
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return randomPool[r.rng.Intn(len(randomPool))]
}
