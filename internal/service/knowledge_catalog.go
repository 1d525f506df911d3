package service

import "github.com/jengzang/greenguardian-backend-go/internal/models"

// Knowledge article categories
const (
	KnowledgeCategoryAQI       = "AQI"
	KnowledgeCategoryHealth    = "Health"
	KnowledgeCategoryRecycling = "Recycling"
	KnowledgeCategoryGreenTips = "Green living tips"
	KnowledgeCategoryStandards = "Standards & guidance"
)

var knowledgeCatalog = []models.KnowledgeArticle{
	{
		ID:       "aqi-101",
		Title:    "AQI in a nutshell",
		Category: KnowledgeCategoryAQI,
		Summary:  "AQI is a composite index of air pollution on a 0-500 scale.",
		Content: `• AQI 0-50: Good. Safe for almost everyone.
• AQI 51-100: Moderate. Sensitive groups should consider limiting time outdoors.
• AQI 101-150: Poor. Limit strenuous outdoor activity.
• AQI 151-200: Bad. Wear a mask and cut down time outdoors.
• AQI 201-300: Very bad. Avoid going out if you can.
• AQI >300: Hazardous. Stay indoors and filter the air.

Tips:
- Follow hourly PM2.5/O₃ to pick the time to go out.
- Use a particle-filtering mask (P2/P3) when the AQI is high.`,
		Tags: []string{"AQI", "PM2.5", "O3"},
	},
	{
		ID:       "aqi-pm25",
		Title:    "What is PM2.5? Health effects",
		Category: KnowledgeCategoryHealth,
		Summary:  "PM2.5 is fine dust ≤2.5µm that travels deep into the lungs and blood.",
		Content: `Sources: traffic exhaust, burning waste, industry, coal briquettes, urban dust.

Effects:
- Irritated eyes, nose and throat, coughing, shortness of breath.
- Higher long-term cardiovascular and respiratory risk.

Reducing exposure:
- Keep windows shut during pollution peaks.
- Run a HEPA air purifier in the bedroom or living room.
- Avoid burning paper offerings or waste around the house.`,
		Tags: []string{"PM2.5", "respiratory health"},
	},
	{
		ID:       "recycle-quick",
		Title:    "Quick waste sorting in an apartment",
		Category: KnowledgeCategoryRecycling,
		Summary:  "Three bins: recyclable, organic, residual. Clear labels, fixed spots.",
		Content: `Set up three bins in the kitchen or on the balcony:
- Recyclable: paper, PET/PP plastic, metal, glass (rinsed and dried).
- Organic: vegetable peels, coffee grounds (compostable).
- Residual: dirty gauze, broken ceramics, soiled paper.

Tips:
- Stick a guide right on the lid.
- Rinse milk cartons and plastic bottles so they do not smell.`,
		Tags: []string{"waste sorting", "household"},
	},
	{
		ID:       "green-habits",
		Title:    "5 simple green habits",
		Category: KnowledgeCategoryGreenTips,
		Summary:  "Carry a bottle and a cloth bag, switch off standby, walk short trips, eat seasonal.",
		Content: `1) A personal water bottle (0.5-1L).
2) A cloth bag folded into your backpack.
3) Switch devices off instead of leaving them on standby.
4) Walk or cycle for short trips of 1km or less.
5) Prefer seasonal, local food.`,
		Tags: []string{"energy saving", "green commuting"},
	},
	{
		ID:       "o3-basics",
		Title:    "Ground-level ozone (O₃): when to worry?",
		Category: KnowledgeCategoryAQI,
		Summary:  "O₃ climbs at noon and on sunny afternoons; it irritates airways and causes chest pain and coughing.",
		Content: `- O₃ forms from photochemical reactions between NOx and VOCs under sunlight.
- It peaks from midday to late afternoon on hot, sunny days.

Reducing exposure:
- Exercise outdoors early in the morning.
- Avoid busy roads in strong sun.`,
		Tags: []string{"O3", "strong sun"},
	},
	{
		ID:       "mask-guide",
		Title:    "Choosing a mask for fine dust",
		Category: KnowledgeCategoryHealth,
		Summary:  "Pick P2/P3 (EN) or N95 (NIOSH) and make sure it fits snugly.",
		Content: `- Standards: P2/P3 (EN 149), N95/N99 (NIOSH).
- Fit test: snug on the nose bridge and both cheeks, no leaks.
- Replace it when damp, dirty or hard to breathe through.`,
		Tags: []string{"mask", "P2", "N95"},
	},
	{
		ID:       "aqi-standards",
		Title:    "How the AQI bands are computed",
		Category: KnowledgeCategoryStandards,
		Summary:  "The index interpolates pollutant concentrations between fixed breakpoints.",
		Content: `Each pollutant has a breakpoint table mapping a concentration range to an index range.
The index is interpolated linearly inside the matching band and rounded.

- PM2.5 uses the 24-hour µg/m³ table, 0.0-500.4.
- O₃ uses an approximate µg/m³ table, 0-800.
- The overall AQI is the worse of the two; the dominant pollutant is the one that set it.`,
		Tags: []string{"AQI", "breakpoints"},
	},
}
