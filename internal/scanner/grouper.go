package scanner

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// grouper.go — clustering de mercados relacionados.
//
// Dos mercados van al mismo grupo cuando comparten la "pregunta base": la
// pregunta sin el sufijo entre paréntesis y sin tokens numéricos de umbral.
// "BTC above $100k (Dec 2025)" y "BTC above $120k (Dec 2025)" colapsan a la
// misma base solo porque difieren en el número; fuera del bracket la base
// tiene que coincidir exactamente.
//
// Los patrones son heurísticos: pueden sobre-agrupar preguntas distintas con
// el mismo fraseo numérico y sub-agrupar el mismo evento con otro fraseo.
// No existe un oráculo de "mismo evento"; la precisión del grouping se trata
// como probabilística.

var (
	bracketRe      = regexp.MustCompile(`\(([^)]+)\)`)
	bracketStripRe = regexp.MustCompile(`\s*\([^)]+\)`)
	numericRe      = regexp.MustCompile(`(?i)\d+[kmb]?\s*(percent|bps|dollars?|usd)?`)

	timeframePatterns = []*regexp.Regexp{
		regexp.MustCompile(`by\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*\s+\d{4}`),
		regexp.MustCompile(`by\s+\w+\s+\d{1,2},?\s+\d{4}`),
		regexp.MustCompile(`in\s+\d{4}`),
		regexp.MustCompile(`before\s+\w+\s+\d{4}`),
		regexp.MustCompile(`on\s+\w+\s+\d{1,2}`),
	}

	thresholdPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(above|over|more than|≥|>)\s*\$?(\d+[kmb]?)`),
		regexp.MustCompile(`(?i)(below|under|less than|≤|<)\s*\$?(\d+[kmb]?)`),
		regexp.MustCompile(`(?i)(\d+[kmb]?)\s*(percent|bps|basis points)`),
	}
)

// Grouper agrupa mercados que comparten plantilla de pregunta.
type Grouper struct {
	maxNameLen int
}

// NewGrouper crea un Grouper.
func NewGrouper() *Grouper {
	return &Grouper{maxNameLen: 50}
}

// BaseQuestion deriva la pregunta base: sin paréntesis, sin tokens numéricos
// (magnitud + unidad), en minúsculas y sin espacios sobrantes.
func BaseQuestion(question string) string {
	base := bracketStripRe.ReplaceAllString(question, "")
	base = numericRe.ReplaceAllString(base, "")
	return strings.ToLower(strings.TrimSpace(base))
}

// ExtractLabel deriva la etiqueta distintiva del mercado: el contenido del
// primer paréntesis si existe, si no el primer match de umbral. Puede ser ""
// (el mercado sigue agrupándose por igualdad de pregunta base).
func ExtractLabel(question string) string {
	if m := bracketRe.FindStringSubmatch(question); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, re := range thresholdPatterns {
		if m := re.FindString(question); m != "" {
			return m
		}
	}
	return ""
}

// InferPartitionType infiere qué parámetro separa la pregunta, con checks
// ordenados: timeframe gana sobre threshold, threshold sobre candidate.
func InferPartitionType(question string) domain.PartitionType {
	lower := strings.ToLower(question)

	for _, re := range timeframePatterns {
		if re.MatchString(lower) {
			return domain.PartitionTimeframe
		}
	}
	for _, re := range thresholdPatterns {
		if re.MatchString(lower) {
			return domain.PartitionThreshold
		}
	}
	for _, sep := range []string{" vs ", " VS ", " vs. "} {
		if strings.Contains(question, sep) {
			return domain.PartitionCandidate
		}
	}
	return domain.PartitionUnknown
}

// groupKey devuelve el ID estable del grupo para una pregunta base.
// FNV-1a en lugar del hash del runtime: igual input, igual key, en cualquier
// proceso.
func groupKey(base string) string {
	h := fnv.New32a()
	h.Write([]byte(base))
	return fmt.Sprintf("group_%d", h.Sum32()%1_000_000)
}

// Group agrupa los mercados por pregunta base, anota GroupID/GroupLabel en
// cada mercado del slice de entrada y devuelve solo los grupos con >= 2
// miembros, en orden de primera aparición.
func (g *Grouper) Group(markets []domain.Market) []domain.MarketGroup {
	groups := make(map[string]*domain.MarketGroup)
	var order []string

	for i := range markets {
		base := BaseQuestion(markets[i].Question)
		label := ExtractLabel(markets[i].Question)
		key := groupKey(base)

		grp, ok := groups[key]
		if !ok {
			grp = &domain.MarketGroup{
				ID:            key,
				Name:          truncate(base, g.maxNameLen),
				PartitionType: InferPartitionType(markets[i].Question),
			}
			groups[key] = grp
			order = append(order, key)
		}

		markets[i].GroupID = key
		markets[i].GroupLabel = label
		grp.Markets = append(grp.Markets, markets[i])
	}

	result := make([]domain.MarketGroup, 0, len(order))
	for _, key := range order {
		if groups[key].Size() >= 2 {
			result = append(result, *groups[key])
		}
	}
	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
