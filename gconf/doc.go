/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps its configuration as a singleton entity, loaded from the
genesis file during initialization and updated later through regular
transactions.

*/
package gconf
