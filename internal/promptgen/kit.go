package promptgen

import "fmt"

// KitComponent identifies one deliverable of a brand kit.
type KitComponent string

// The five brand kit components, generated in this order.
const (
	KitBusinessCards KitComponent = "business_cards"
	KitWebsiteMockup KitComponent = "website_mockup"
	KitSocialHeaders KitComponent = "social_headers"
	KitTShirtMockup  KitComponent = "tshirt_mockup"
	KitAnimatedLogo  KitComponent = "animated_logo"
)

// KitComponents lists all components in generation order.
func KitComponents() []KitComponent {
	return []KitComponent{
		KitBusinessCards,
		KitWebsiteMockup,
		KitSocialHeaders,
		KitTShirtMockup,
		KitAnimatedLogo,
	}
}

// kitTemplates maps each component to its prompt template. Templates take
// the logo description first and the company name second.
var kitTemplates = map[KitComponent]string{
	KitBusinessCards: "Professional business card design with %s, company name '%s'. Create 2 versions side by side: left version with dark logo on light background, right version with light logo on dark background. Clean, modern layout with contact placeholders. High-quality print design, 3.5x2 inch business card proportions",
	KitWebsiteMockup: "Professional website homepage mockup featuring %s for '%s'. Modern web design with logo in header, hero section, feature sections. Clean layout, responsive design aesthetic. Business website mockup, desktop view, high-quality web design",
	KitSocialHeaders: "Social media header bundle featuring %s for '%s'. Create 4 headers in single image: Twitter (1500x500), LinkedIn (1584x396), Facebook (1200x630), YouTube (2560x1440). Professional branding, logo prominently positioned, modern design",
	KitTShirtMockup:  "T-shirt mockup with %s for '%s' on chest area. High-quality apparel mockup, professional model or flat lay, logo well-positioned, complementary t-shirt color, product photography style",
	KitAnimatedLogo:  "Create animated version of %s for '%s'. Subtle entrance animation (fade in, gentle scale, or soft rotation), professional motion graphics, 2-3 second duration, seamless loop, brand animation",
}

// KitPrompt renders the prompt for one brand kit component.
func KitPrompt(component KitComponent, logoDescription, companyName string) (string, error) {
	template, ok := kitTemplates[component]
	if !ok {
		return "", fmt.Errorf("unknown kit component %q", component)
	}
	if logoDescription == "" {
		logoDescription = "modern professional logo design"
	}
	if companyName == "" {
		companyName = "Your Company"
	}
	return fmt.Sprintf(template, logoDescription, companyName), nil
}
