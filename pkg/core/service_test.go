package core

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want ServiceKind
	}{
		{"database", "", KindDatabase},
		{"mysql", "", KindDatabase},
		{"MariaDB", "", KindDatabase},
		{"postgres", "service", KindDatabase},
		{"appserver", "", KindAppServer},
		{"nginx", "", KindAppServer},
		{"php", "lando", KindAppServer},
		{"node", "", KindNode},
		{"yarn", "", KindNode},
		{"cache", "database", KindDatabase},
		{"web", "appserver", KindAppServer},
		{"assets", "node", KindNode},
		{"mailhog", "mailhog", KindGeneric},
		{"", "", KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.typ, func(t *testing.T) {
			if got := Classify(tt.name, tt.typ); got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.name, tt.typ, got, tt.want)
			}
		})
	}
}

func TestDecodeServices(t *testing.T) {
	data := []byte(`[
		{"service":"appserver","type":"php","urls":["http://site1.lndo.site"],"version":"8.2"},
		{"service":"database","type":"mysql","version":"8.0",
		 "internal_connection":{"host":"database","port":"3306"},
		 "external_connection":{"host":"127.0.0.1","port":"32768"},
		 "creds":{"user":"lamp","password":"lamp","database":"lamp"}}
	]`)

	services, err := DecodeServices(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(services))
	}

	if services[0].Kind != KindAppServer {
		t.Errorf("appserver classified as %q", services[0].Kind)
	}
	db := services[1]
	if db.Kind != KindDatabase {
		t.Errorf("database classified as %q", db.Kind)
	}
	if db.Internal == nil || db.Internal.Port != "3306" {
		t.Errorf("internal connection not decoded: %+v", db.Internal)
	}
	if db.Creds == nil || db.Creds.User != "lamp" {
		t.Errorf("creds not decoded: %+v", db.Creds)
	}
}

func TestDecodeServicesInvalid(t *testing.T) {
	if _, err := DecodeServices([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestDecodeApps(t *testing.T) {
	data := []byte(`[{"name":"site1","location":"/a","urls":[],"running":true}]`)
	apps, err := DecodeApps(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 app, got %d", len(apps))
	}
	if apps[0].Name != "site1" || apps[0].Location != "/a" || !apps[0].Running {
		t.Errorf("unexpected app: %+v", apps[0])
	}
}
