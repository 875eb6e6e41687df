package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceKind is the closed classification of a service for presentation
// purposes. It is decided once, when the introspection result is decoded,
// and stored on the Service value.
type ServiceKind string

const (
	KindDatabase  ServiceKind = "database"
	KindAppServer ServiceKind = "appserver"
	KindNode      ServiceKind = "node"
	KindGeneric   ServiceKind = "generic"
)

// Connection is a host/port endpoint of a service.
type Connection struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

// Creds holds optional credentials attached to a service.
type Creds struct {
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
}

// Service is one running component of a project as reported by
// `lando info --format json`. Immutable once decoded; a refresh replaces
// the whole slice.
type Service struct {
	Service  string      `json:"service"`
	Type     string      `json:"type"`
	URLs     []string    `json:"urls"`
	Version  string      `json:"version"`
	Internal *Connection `json:"internal_connection,omitempty"`
	External *Connection `json:"external_connection,omitempty"`
	Creds    *Creds      `json:"creds,omitempty"`
	Kind     ServiceKind `json:"-"`
}

// DecodeServices parses `lando info --format json` output and classifies
// every service.
func DecodeServices(data []byte) ([]Service, error) {
	var services []Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("parse service info JSON: %w", err)
	}
	for i := range services {
		services[i].Kind = Classify(services[i].Service, services[i].Type)
	}
	return services, nil
}

var databaseNames = map[string]bool{
	"mysql": true, "mariadb": true, "postgres": true, "postgresql": true,
	"mongodb": true, "redis": true, "sqlite": true, "cassandra": true,
	"elasticsearch": true, "memcached": true,
}

var appServerNames = map[string]bool{
	"apache": true, "nginx": true, "httpd": true, "php": true,
	"python": true, "ruby": true, "java": true, "tomcat": true, "jetty": true,
}

var nodeNames = map[string]bool{
	"node": true, "nodejs": true, "npm": true, "yarn": true,
}

// Classify maps a service name and type string onto a ServiceKind. The name
// wins over the type because recipe-generated names are more reliable.
func Classify(name, typ string) ServiceKind {
	name = strings.ToLower(name)
	typ = strings.ToLower(typ)

	switch {
	case name == "database" || databaseNames[name]:
		return KindDatabase
	case name == "appserver" || appServerNames[name]:
		return KindAppServer
	case nodeNames[name]:
		return KindNode
	}

	switch typ {
	case "database":
		return KindDatabase
	case "appserver":
		return KindAppServer
	case "node":
		return KindNode
	}
	return KindGeneric
}
