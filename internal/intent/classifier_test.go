package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		text string
		want Category
	}{
		"help beats greeting":     {text: "hola, necesito ayuda", want: Help},
		"purchase beats greeting": {text: "Hola, quiero comprar miel", want: Purchase},
		"greeting":                {text: "Buenos días", want: Greeting},
		"farewell":                {text: "chao, nos vemos", want: Farewell},
		"thanks is not farewell":  {text: "muchas gracias", want: Thanks},
		"products":                {text: "¿qué venden?", want: Products},
		"catalog with accent":     {text: "muéstrame el CATÁLOGO", want: Products},
		"default":                 {text: "el cielo es azul", want: Default},
		"empty":                   {text: "", want: Default},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestIsPurchase(t *testing.T) {
	if !IsPurchase("Quiero pedir un cake") {
		t.Fatal("expected purchase")
	}
	if IsPurchase("ver carrito") {
		t.Fatal("unexpected purchase")
	}
}
