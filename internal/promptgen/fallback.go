package promptgen

import (
	"context"
	"fmt"

	"github.com/phrazzld/logoforge-api/internal/domain"
)

// FallbackProducer is the deterministic prompt catalog. It never fails and
// never performs I/O, which makes it both the safety net behind the
// LLM-backed producer and the default when no LLM is configured.
type FallbackProducer struct{}

var _ Producer = (*FallbackProducer)(nil)

// NewFallbackProducer creates a FallbackProducer.
func NewFallbackProducer() *FallbackProducer {
	return &FallbackProducer{}
}

// PortfolioPrompts implements Producer.PortfolioPrompts. The catalog covers
// three stylistic families (photorealistic material studies, retro graphic
// movements, minimalist construction) with five prompts each.
func (p *FallbackProducer) PortfolioPrompts(_ context.Context, brief domain.Brief) ([]string, error) {
	company := brief.CompanyName
	industry := brief.Industry
	initial := companyInitial(company)

	return []string{
		fmt.Sprintf("Liquid chrome %s logo morphing from molten metal, dramatic black mirror surface, caustic reflections, octane render, photorealistic", company),
		fmt.Sprintf("Crystal prism logo for %s, dichroic glass refracting rainbow light, floating in void, ray-traced, luxury product photography", company),
		fmt.Sprintf("Carbon fiber %s monogram with gold inlay, extreme macro detail, studio lighting, material study, 8K resolution", initial),
		fmt.Sprintf("Marble sculpture of %s mark, Carrara white stone, dramatic shadows, architectural photography, museum lighting", company),
		fmt.Sprintf("Holographic %s emblem on black titanium, iridescent surface, product hero shot, professional photography", company),

		fmt.Sprintf("Memphis Group %s logo, bold geometric shapes, neon colors, playful chaos, vector illustration", company),
		fmt.Sprintf("Swiss Style %s wordmark, Helvetica Bold, mathematical grid, black on white, minimalist poster design", company),
		fmt.Sprintf("Art Deco %s badge, gold and black, symmetrical ornaments, vintage luxury, graphic design", company),
		fmt.Sprintf("Cyberpunk %s type, neon gradients, glitch effects, retrofuture aesthetic, vector art", company),
		fmt.Sprintf("Brutalist %s mark, concrete texture, bold typography, architectural graphic, editorial design", company),

		fmt.Sprintf("Minimalist %s symbol using negative space, single continuous line, geometric perfection, brand identity", company),
		fmt.Sprintf("Isometric %s logo construction, clean lines, subtle gradients, modern tech aesthetic, vector design", company),
		fmt.Sprintf("Abstract %s mark, golden ratio proportions, mathematical beauty, clean presentation, minimalist", company),
		fmt.Sprintf("Penrose impossible shape forming %s, optical illusion, black and white, conceptual design", initial),
		fmt.Sprintf("Flat design %s icon, perfect circles and angles, %s symbolism, app icon aesthetic", company, industry),
	}, nil
}

// VariationPrompts implements Producer.VariationPrompts. One prompt per
// design principle, applied to the original prompt plus the user's
// instruction.
func (p *FallbackProducer) VariationPrompts(_ context.Context, originalPrompt, instruction string) ([]string, error) {
	request := instruction
	if request == "" {
		request = "professional design refinement and enhancement"
	}

	principles := []string{
		"minimalist approach with clean lines and increased white space",
		"bold contemporary style with stronger visual impact",
		"organic flowing interpretation with softer edges and curves",
		"technical precision enhancement with mathematical proportions",
		"dynamic modern evolution with implied movement and energy",
	}

	prompts := make([]string, 0, VariationCount)
	for _, principle := range principles {
		prompts = append(prompts, fmt.Sprintf("%s, %s, %s", originalPrompt, request, principle))
	}
	return prompts, nil
}

// companyInitial returns the first rune of the company name, or the name
// itself when it is empty.
func companyInitial(company string) string {
	for _, r := range company {
		return string(r)
	}
	return company
}
