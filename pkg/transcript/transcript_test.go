package transcript

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hola Jane, ¿cómo estás?", "Hola Jane, ¿cómo estás?"},
		{"whitespace collapse", "  Hola \n\n  Jane \t ", "Hola Jane"},
		{
			name: "sent many header",
			in:   "Jane Doe ha enviado los siguientes mensajes a las 10:45 Hola Tomás",
			want: "Jane Doe Hola Tomás",
		},
		{
			name: "sent one header",
			in:   "Tomás ha enviado el siguiente mensaje a las 9:05 \n Perfecto",
			want: "Tomás Perfecto",
		},
		{"view profile", "Ver el perfil de Jane Doe", "Jane Doe"},
		{"dates", "12 ene Hola 3mar adiós 5 DIC", "Hola adiós"},
		{"month words untouched", "enero marzo", "enero marzo"},
		{"times", "Quedamos a las 16:30 mañana", "Quedamos a las mañana"},
		{"emoji", "Genial 🚀🔥 gracias ☀", "Genial gracias"},
		{
			name: "reaction removed up to next word",
			in:   "Eliminar reacción 👍 Hola de nuevo",
			want: "Hola de nuevo",
		},
		{
			name: "reaction at end",
			in:   "Perfecto Eliminar reacción 👍",
			want: "Perfecto",
		},
		{
			name: "back to back reactions",
			in:   "Eliminar reacción Eliminar reacción 👏 Vale",
			want: "Vale",
		},
		{
			name: "reaction does not cross lines",
			in:   "Eliminar reacción 👍\n👍 Vale",
			want: "Eliminar reacción Vale",
		},
		{
			name: "reaction ends at no-break space",
			in:   "Eliminar reacción 👍\u00a0Hola de nuevo",
			want: "Hola de nuevo",
		},
		{
			name: "reaction ends at narrow no-break space",
			in:   "Eliminar reacción 👍\u202fVale",
			want: "Vale",
		},
		{"non-breaking spaces", "Hola\u00a0\u00a0Jane", "Hola Jane"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	in := "Jane ha enviado el siguiente mensaje a las 10:00 Eliminar reacción 😀 Hola 12 ene ¿hablamos? 🙌"
	once := Clean(in)
	if twice := Clean(once); twice != once {
		t.Errorf("Clean(Clean(x)) = %q, want %q", twice, once)
	}
}
