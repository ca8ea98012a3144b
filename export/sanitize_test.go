package export

import "testing"

func TestEntryName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jean Dupont", "Jean_Dupont"},
		{"Élodie", "Elodie"},
		{"José-María del Río", "Jose_Maria_del_Rio"},
		{"château n°7", "chateau_n_7"},
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst"},
		{"你好", "__"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := entryName(tt.in); got != tt.want {
			t.Errorf("entryName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Fête des voisins", "Fête_des_voisins_batch.zip"},
		{"  Diplôme   2026 ", "Diplôme_2026_batch.zip"},
		{"Solo", "Solo_batch.zip"},
	}
	for _, tt := range tests {
		if got := archiveName(tt.in); got != tt.want {
			t.Errorf("archiveName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
