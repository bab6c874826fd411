package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

const personalTemplate = `Kişisel Kader Matrisini Analiz Et:

Temel Noktalar: %s
Amaçlar: %s
Çakra Analizi: %s

Lütfen bu kader matrisini analiz ederek kişinin:
1. Temel kişilik özellikleri
2. Güçlü ve zayıf yönleri
3. Yaşam amacı ve hedefleri
4. Ruhsal gelişim potansiyeli
5. Kariyer ve ilişki önerileri

hakkında detaylı ve anlayışlı bir analiz yap. Türkçe olarak yanıtla.`

const compatibilityTemplate = `Uyumluluk Matrisini Analiz Et:

Uyumluluk Verileri: %s

Lütfen bu uyumluluk matrisini analiz ederek:
1. Genel uyumluluk seviyesi
2. Güçlü uyumluluk alanları
3. Potansiyel zorluklar
4. İlişki önerileri
5. Birlikte büyüme potansiyeli

hakkında detaylı bir analiz yap. Türkçe olarak yanıtla.`

// GenericPrompt is used for any analysis type without its own template.
const GenericPrompt = "Genel kader matrisi analizi yapın."

// BuildPrompt renders the prompt for t. Sections missing from data, or set
// to null, render as an empty object.
func BuildPrompt(data domain.MatrixData, t domain.AnalysisType) (string, error) {
	switch t {
	case domain.AnalysisPersonal:
		points, err := section(data, "points")
		if err != nil {
			return "", err
		}
		purposes, err := section(data, "purposes")
		if err != nil {
			return "", err
		}
		chart, err := section(data, "chartHeart")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(personalTemplate, points, purposes, chart), nil

	case domain.AnalysisCompatibility:
		compat, err := section(data, "compatibility")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(compatibilityTemplate, compat), nil
	}

	return GenericPrompt, nil
}

// promptKind keeps metric label values bounded.
func promptKind(t domain.AnalysisType) string {
	switch t {
	case domain.AnalysisPersonal, domain.AnalysisCompatibility:
		return string(t)
	default:
		return "generic"
	}
}

func section(data domain.MatrixData, key string) (string, error) {
	v, ok := data[key]
	if !ok || v == nil {
		v = map[string]any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
