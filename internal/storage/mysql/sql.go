package mysql

const upsertPropertySQL = `
INSERT INTO properties
  (id, type, city, neighborhood, address, price, bedrooms, bathrooms,
   area_sqft, year_built, description, features, status, listed_date)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  type         = VALUES(type),
  city         = VALUES(city),
  neighborhood = VALUES(neighborhood),
  address      = VALUES(address),
  price        = VALUES(price),
  bedrooms     = VALUES(bedrooms),
  bathrooms    = VALUES(bathrooms),
  area_sqft    = VALUES(area_sqft),
  year_built   = VALUES(year_built),
  description  = VALUES(description),
  features     = VALUES(features),
  status       = VALUES(status),
  listed_date  = VALUES(listed_date),
  updated_at   = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Full snapshot. Database sources define load order as primary-key order.
const selectPropertiesSQL = `
SELECT
  id, type, city, neighborhood, address, price, bedrooms, bathrooms,
  area_sqft, year_built, description, features, status, listed_date
FROM properties
ORDER BY id
`
