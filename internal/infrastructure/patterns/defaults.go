package patterns

import "github.com/medilens/backend/internal/domain"

// defaultPatterns covers common prescription medicines and their Indian and
// international brand names.
var defaultPatterns = []domain.MedicinePattern{
	{Name: "paracetamol", Variations: []string{"paracetamol", "acetaminophen", "dolo", "crocin", "calpol", "panadol", "tylenol"}},
	{Name: "ibuprofen", Variations: []string{"ibuprofen", "brufen", "advil", "combiflam"}},
	{Name: "amoxicillin", Variations: []string{"amoxicillin", "amoxycillin", "amoxil", "mox", "novamox"}},
	{Name: "azithromycin", Variations: []string{"azithromycin", "azithral", "azee", "zithromax"}},
	{Name: "levocetirizine", Variations: []string{"levocetirizine", "levocet", "xyzal"}},
	{Name: "cetirizine", Variations: []string{"cetirizine", "zyrtec", "okacet", "cetzine"}},
	{Name: "pantoprazole", Variations: []string{"pantoprazole", "pantocid", "pan 40", "protonix"}},
	{Name: "omeprazole", Variations: []string{"omeprazole", "omez", "prilosec"}},
	{Name: "ranitidine", Variations: []string{"ranitidine", "rantac", "aciloc", "zantac"}},
	{Name: "metformin", Variations: []string{"metformin", "glycomet", "glucophage"}},
	{Name: "amlodipine", Variations: []string{"amlodipine", "amlong", "amlodac", "norvasc"}},
	{Name: "atorvastatin", Variations: []string{"atorvastatin", "atorva", "storvas", "lipitor"}},
	{Name: "losartan", Variations: []string{"losartan", "losar", "repace", "cozaar"}},
	{Name: "montelukast", Variations: []string{"montelukast", "montair", "singulair"}},
	{Name: "diclofenac", Variations: []string{"diclofenac", "voveran", "voltaren"}},
	{Name: "aspirin", Variations: []string{"aspirin", "ecosprin", "disprin"}},
	{Name: "vitamin d3", Variations: []string{"cholecalciferol", "vitamin d3", "calcirol", "uprise d3"}},
}
