package catalog

import "github.com/medilens/backend/internal/domain"

// DemoProducts is the built-in storefront table used when no seed file or
// database is configured.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{ID: "p-1001", Name: "Dolo 650mg Tablet 15", Price: 30.91, OriginalPrice: 33.6, Image: "/images/dolo-650.png", Category: "Pain Relief"},
		{ID: "p-1002", Name: "Crocin Advance 500mg Tablet 20", Price: 18.7, OriginalPrice: 20.35, Image: "/images/crocin-advance.png", Category: "Pain Relief"},
		{ID: "p-1003", Name: "Calpol 500mg Tablet 15", Price: 14.2, OriginalPrice: 15.5, Image: "/images/calpol-500.png", Category: "Pain Relief"},
		{ID: "p-1004", Name: "Brufen 400mg Tablet 15", Price: 12.5, OriginalPrice: 13.9, Image: "/images/brufen-400.png", Category: "Pain Relief"},
		{ID: "p-1005", Name: "Combiflam Tablet 20", Price: 41.3, OriginalPrice: 45, Image: "/images/combiflam.png", Category: "Pain Relief"},
		{ID: "p-1006", Name: "Azithral 500 Tablet 5", Price: 119.5, OriginalPrice: 132.8, Image: "/images/azithral-500.png", Category: "Antibiotics"},
		{ID: "p-1007", Name: "Novamox 500 Capsule 10", Price: 78.4, OriginalPrice: 87.1, Image: "/images/novamox-500.png", Category: "Antibiotics"},
		{ID: "p-1008", Name: "Okacet 10mg Tablet 10", Price: 19.8, OriginalPrice: 22, Image: "/images/okacet.png", Category: "Allergy"},
		{ID: "p-1009", Name: "Levocet 5mg Tablet 10", Price: 48.6, OriginalPrice: 54, Image: "/images/levocet.png", Category: "Allergy"},
		{ID: "p-1010", Name: "Pan 40 Tablet 15", Price: 155.6, OriginalPrice: 172.9, Image: "/images/pan-40.png", Category: "Gastro"},
		{ID: "p-1011", Name: "Omez 20 Capsule 20", Price: 62.2, OriginalPrice: 69.1, Image: "/images/omez-20.png", Category: "Gastro"},
		{ID: "p-1012", Name: "Glycomet 500 SR Tablet 20", Price: 33.4, OriginalPrice: 37.1, Image: "/images/glycomet-500.png", Category: "Diabetes"},
		{ID: "p-1013", Name: "Amlong 5mg Tablet 15", Price: 54, OriginalPrice: 60, Image: "/images/amlong-5.png", Category: "Cardiac"},
		{ID: "p-1014", Name: "Atorva 10 Tablet 15", Price: 96.3, OriginalPrice: 107, Image: "/images/atorva-10.png", Category: "Cardiac"},
		{ID: "p-1015", Name: "Montair LC Tablet 10", Price: 212.4, OriginalPrice: 236, Image: "/images/montair-lc.png", Category: "Respiratory"},
		{ID: "p-1016", Name: "Ecosprin 75 Tablet 14", Price: 4.9, OriginalPrice: 5.4, Image: "/images/ecosprin-75.png", Category: "Cardiac"},
		{ID: "p-1017", Name: "Calcirol Sachet 1g", Price: 54.8, OriginalPrice: 60.9, Image: "/images/calcirol.png", Category: "Vitamins"},
		{ID: "p-1018", Name: "Voveran SR 100 Tablet 15", Price: 176.1, OriginalPrice: 195.7, Image: "/images/voveran-sr.png", Category: "Pain Relief"},
	}
}
