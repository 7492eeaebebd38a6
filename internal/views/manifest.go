// internal/views/manifest.go
package views

// defaultManifest declares the two parallel dashboard view sets. The
// standard set serves tenants on the /id backend mount; the profile set
// serves tenants whose database name carries the profile_ marker.
const defaultManifest = `
sets:
  standard:
    - {name: doctors, group: content, path: /doctors, upstream: /doctors}
    - {name: detail, group: detail, path: /data, upstream: /data}
    - {name: events, group: detail, path: /events, upstream: /events}
    - {name: all-events, group: detail, path: /allevents, upstream: /allevents}
    - {name: weightages, group: content, path: /weightages/all, upstream: /weightages/all}
    - {name: top-affiliations, group: summary, path: /top-affiliations, upstream: /top-affiliations}
    - {name: top-specialties, group: summary, path: /top-specialties, upstream: /top-specialties}
    - {name: country-map, group: summary, path: /fetch-country, upstream: /fetch-country}
    - {name: state-kol-counts, group: summary, path: /state-kol-counts, upstream: /state-kol-counts}
  profile:
    - {name: doctors, group: content, path: /doctors, upstream: /doctors}
    - {name: detail, group: detail, path: /data, upstream: /data}
    - {name: summary-doc, group: detail, path: /summarydoc, upstream: /summarydoc}
    - {name: biography, group: detail, path: /biography, upstream: /biography}
    - {name: qualifications, group: detail, path: /qualifications, upstream: /qualifications}
    - {name: honors-awards, group: detail, path: /honors-awards, upstream: /honors-awards}
    - {name: press, group: detail, path: /press, upstream: /press}
    - {name: social-media-accounts, group: detail, path: /social-media-accounts, upstream: /social-media-accounts}
    - {name: social-media-activity, group: detail, path: /social-media-activity, upstream: /social-media-activity}
    - {name: company-affinity, group: detail, path: /company-affinity, upstream: /company-affinity}
    - {name: trials, group: detail, path: /trials, upstream: /trials}
    - {name: network, group: detail, path: "/kol/{kolId}/{edge}", upstream: "/kol/{kolId}/{edge}"}
    - {name: top-states, group: summary, path: /top-states, upstream: /top-states}
    - {name: top-cities, group: summary, path: /top-cities, upstream: /top-cities}
    - {name: top-conferences, group: summary, path: /top-conferences, upstream: /top-conferences}
    - {name: conference-distribution, group: summary, path: /kol-conference-distribution, upstream: /kol-conference-distribution}
    - {name: publication-distribution, group: summary, path: /kol-publication-distribution, upstream: /kol-publication-distribution}
    - {name: trials-distribution, group: summary, path: /kol-trials-distribution, upstream: /kol-trials-distribution}
    - {name: association-distribution, group: summary, path: /kol-association-distribution, upstream: /kol-association-distribution}
    - {name: industry-distribution, group: summary, path: /kol-industry-distribution, upstream: /kol-industry-distribution}
    - {name: journal-distribution, group: summary, path: /kol-journal-distribution, upstream: /kol-journal-distribution}
`
