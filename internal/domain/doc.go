// Package domain models Romanian nowcasting weather warnings and the per-county
// state derived from them.
//
// # Data Source
//
// Warnings come from the Administrația Națională de Meteorologie (ANM)
// nowcasting feed at https://www.meteoromania.ro/xml/avertizari-nowcasting.xml.
// The feed is a small XML document that is replaced whenever a forecaster
// issues, extends or cancels a warning. When nothing is in force it carries
// no warning elements at all, which is the normal case.
//
// # Feed Conventions
//
// Warning elements:
//
//	<avertizare tipMesaj="..." numeTipMesaj="..." dataInceput="..." dataSfarsit="..."
//	            zona="..." semnalare="..." culoare="1" numeCuloare="galben"
//	            modificat="..." creat="..."/>
//	Older and mirrored variants use <alert> or <warning> and carry the same
//	fields as child elements or under English names (start_time, areaDesc, ...).
//
// Region text:
//
//	Free text naming one or more counties, e.g.
//	"Județul Cluj: Cluj-Napoca, Turda; Județul Alba: Aiud".
//	It may embed markup (<strong>, <br/>) and numeric character references
//	for Romanian letters ("Jude&#x21B;ul"), sometimes escaped twice.
//
// Time format:
//
//	"2006-01-02T15:04" or "2006-01-02 15:04:05" without a zone. These are UTC
//	and are converted to Europe/Bucharest for display.
//
// Color codes:
//
//	1 = galben (yellow), 2 = portocaliu (orange), 3 = roșu (red).
//	Severity is derived from the color name, not the code.
//
// # Folding
//
// Region and keyword matching folds text: lowercase, Romanian letters mapped
// to ASCII (ă, â → a; î → i; ș, ş → s; ț, ţ → t) and any other combining
// marks dropped. Whitespace is collapsed.
//
// # Fan-out
//
// A warning naming N counties becomes N alerts, identical except for ID and
// region. IDs are deterministic so repeated polls yield the same IDs.
package domain
